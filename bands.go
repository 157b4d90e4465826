// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

// PreviewCenterWidth computes the candidate (center, width) from current
// filter state without committing it to the band vector (spec.md §4.2
// "Preview").
func (p *Pool) PreviewCenterWidth() (center uint64, width uint32, err error) {
	maxY := p.EmaYABps
	if p.EmaYBBps > maxY {
		maxY = p.EmaYBBps
	}
	shrink := p.WidthSlopePerKbps * (maxY / 1000)

	var base uint32
	if p.BaseWidthBps > shrink {
		base = p.BaseWidthBps - shrink
	}
	width = clampU32(base, p.MinWidthBps, p.MaxWidthBps)

	diff := int64(p.EmaYABps) - int64(p.EmaYBBps)
	magKbps := absI64(diff) / 1000
	tiltBps := int64(p.BiasPerKbps) * magKbps
	if diff < 0 {
		tiltBps = -tiltBps
	}

	center, err = ApplyBps(p.EmaSpot1e6, tiltBps)
	if err != nil {
		return 0, 0, err
	}
	return center, width, nil
}

// RecomputeBands lays out the band vector and weights from the current
// filter state (spec.md §4.2 "Commit"). enforceCB applies the per-update
// circuit breakers; weightsOnly skips the geometry pass and only
// reassigns weights.
func (p *Pool) RecomputeBands(enforceCB, weightsOnly bool) error {
	center, width, err := p.PreviewCenterWidth()
	if err != nil {
		return err
	}

	prevCenter := p.LastCenterPrice1e6
	lastWidth := p.LastWidthBps

	if enforceCB {
		if prevCenter > 0 {
			lo, err := ApplyBps(prevCenter, -int64(p.MaxCenterMoveBps))
			if err != nil {
				return err
			}
			hi, err := ApplyBps(prevCenter, int64(p.MaxCenterMoveBps))
			if err != nil {
				return err
			}
			center = ClampU64(center, lo, hi)
		}
		if lastWidth > 0 {
			if diffU32(width, lastWidth) > p.MaxWidthChangeBps {
				if width > lastWidth {
					width = lastWidth + p.MaxWidthChangeBps
				} else {
					width = lastWidth - p.MaxWidthChangeBps
				}
			}
		}
	}

	n := int(p.NBands)
	mid := (n - 1) / 2
	diff := int64(p.EmaYABps) - int64(p.EmaYBBps)

	newBands := make([]Band, n)
	for i := 0; i < n; i++ {
		nb := NewBand()
		if i < len(p.Bands) {
			prev := p.Bands[i]
			nb.FeeGrowthA1e18 = prev.FeeGrowthA1e18
			nb.FeeGrowthB1e18 = prev.FeeGrowthB1e18
			nb.ReservesA = prev.ReservesA
			nb.ReservesB = prev.ReservesB
			nb.TotalShares = prev.TotalShares
			nb.UtilA = prev.UtilA
			nb.UtilB = prev.UtilB
			nb.IsActive = prev.IsActive
		}

		if !weightsOnly {
			lowerMul := int64(i-mid) * int64(width)
			upperMul := int64(i-mid+1) * int64(width)
			lower, err := ApplyBps(center, lowerMul)
			if err != nil {
				return err
			}
			upper, err := ApplyBps(center, upperMul)
			if err != nil {
				return err
			}
			nb.Lower1e6 = lower
			nb.Upper1e6 = upper
		} else if i < len(p.Bands) {
			nb.Lower1e6 = p.Bands[i].Lower1e6
			nb.Upper1e6 = p.Bands[i].Upper1e6
		}

		newBands[i] = nb
	}

	if !weightsOnly {
		for i := 1; i < n; i++ {
			if newBands[i-1].Upper1e6 > newBands[i].Lower1e6 || newBands[i].Lower1e6 >= newBands[i].Upper1e6 {
				return ErrNonMonotonicBands
			}
		}
	}

	raw := make([]uint32, n)
	var rawSum uint64
	for i := 0; i < n; i++ {
		baseW := int64(10000/n) - int64(p.DecayPerBandBps)*absI64(int64(i-mid))
		w := clampI64ToU32(baseW, 100, 10000)

		if diff != 0 {
			bonus := p.BiasPerKbps
			if bonus > 200 {
				bonus = 200
			}
			onUpperSide := diff > 0 && i > mid
			onLowerSide := diff < 0 && i < mid
			if onUpperSide || onLowerSide {
				w += bonus
			}
		}
		w = clampU32(w, 100, 10000)
		raw[i] = w
		rawSum += uint64(w)
	}
	if rawSum == 0 {
		rawSum = 1
	}

	prevWeights := make([]uint16, n)
	for i := 0; i < n && i < len(p.Bands); i++ {
		prevWeights[i] = p.Bands[i].WeightBps
	}

	var totalWeight uint32
	for i := 0; i < n; i++ {
		wProp := uint32(uint64(raw[i]) * 10000 / rawSum)
		if enforceCB && prevWeights[i] > 0 {
			lo := subClampU32(uint32(prevWeights[i]), p.MaxWeightShiftBps)
			hi := uint32(prevWeights[i]) + p.MaxWeightShiftBps
			wProp = clampU32(wProp, lo, hi)
		}
		wProp = clampU32(wProp, 1, 10000)
		newBands[i].WeightBps = uint16(wProp)
		totalWeight += wProp
	}

	if totalWeight != 10000 {
		residual := int64(10000) - int64(totalWeight)
		last := int64(newBands[n-1].WeightBps) + residual
		last = ClampI64(last, 1, 10000)
		newBands[n-1].WeightBps = uint16(last)
	}

	var finalSum uint32
	for i := 0; i < n; i++ {
		finalSum += uint32(newBands[i].WeightBps)
	}

	p.Bands = newBands
	p.LastWidthBps = width
	p.LastCenterPrice1e6 = center
	p.TotalWeightBps = finalSum
	return nil
}

// MarkInactiveByFloor recomputes each band's IsActive flag: a band is
// active unless both reserves are below their inactivity floors.
func (p *Pool) MarkInactiveByFloor() {
	for i := range p.Bands {
		b := &p.Bands[i]
		b.IsActive = !(b.ReservesA < p.InactiveFloorA && b.ReservesB < p.InactiveFloorB)
	}
}

// RenormalizeActiveWeights proportionally rescales active band weights to
// sum to 10000 and zeros inactive ones; rounding residual goes to the
// last active band.
func (p *Pool) RenormalizeActiveWeights() {
	var activeSum uint64
	lastActive := -1
	for i := range p.Bands {
		if p.Bands[i].IsActive {
			activeSum += uint64(p.Bands[i].WeightBps)
			lastActive = i
		}
	}
	if lastActive < 0 || activeSum == 0 {
		return
	}

	var newSum uint32
	for i := range p.Bands {
		b := &p.Bands[i]
		if !b.IsActive {
			b.WeightBps = 0
			continue
		}
		w := uint32(uint64(b.WeightBps) * 10000 / activeSum)
		b.WeightBps = uint16(w)
		newSum += w
	}

	residual := int64(10000) - int64(newSum)
	last := int64(p.Bands[lastActive].WeightBps) + residual
	p.Bands[lastActive].WeightBps = uint16(ClampI64(last, 0, 10000))
}

// CompactActiveBands drops inactive entries and resizes n_bands. If every
// band is inactive the original vector is preserved (defensive fallback,
// spec.md §9).
func (p *Pool) CompactActiveBands() {
	kept := make([]Band, 0, len(p.Bands))
	for _, b := range p.Bands {
		if b.IsActive {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return
	}
	p.Bands = kept
	p.NBands = uint8(len(kept))
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI64ToU32(v int64, lo, hi uint32) uint32 {
	if v < int64(lo) {
		return lo
	}
	if v > int64(hi) {
		return hi
	}
	return uint32(v)
}

func absI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func diffU32(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func subClampU32(v, delta uint32) uint32 {
	if delta >= v {
		return 0
	}
	return v - delta
}
