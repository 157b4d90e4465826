// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"github.com/sirupsen/logrus"
)

// PostYieldsAndUpdate ingests a fresh observation of yields and spot price
// and, if every gate passes, commits a new band geometry (spec.md §4.3).
// On any failure the pool is left entirely unchanged.
func (p *Pool) PostYieldsAndUpdate(now uint64, yA, yB uint32, spot, cuPrice uint64, caller Address, signers SignerSet, custody Custody) (BandsDigestUpdated, error) {
	fields := logrus.Fields{"slot": now, "caller": caller}

	if p.IsPaused || p.PauseBands {
		logrus.WithFields(fields).Warn("post_yields_and_update: paused")
		return BandsDigestUpdated{}, ErrPaused
	}
	if !p.isUpdaterOrAdmin(caller) {
		logrus.WithFields(fields).Warn("post_yields_and_update: unauthorized caller")
		return BandsDigestUpdated{}, ErrUnauthorized
	}
	if !p.OracleSigner.IsZero() {
		if signers == nil || !signers.HasSigner(p.OracleSigner) {
			logrus.WithFields(fields).Warn("post_yields_and_update: missing oracle co-signer")
			return BandsDigestUpdated{}, ErrMissingOracleSigner
		}
	}
	// Step 4 (metrics-account binding) has no analogue here: MetricsRing is
	// an owned field of Pool, not a separate account that could bind
	// elsewhere.
	if p.MinCuPrice > 0 && cuPrice < p.MinCuPrice {
		logrus.WithFields(fields).Warn("post_yields_and_update: cu price too low")
		return BandsDigestUpdated{}, ErrCuPriceTooLow
	}
	var stale uint64
	if now > p.LastUpdateSlot {
		stale = now - p.LastUpdateSlot
	}
	if stale < p.MinUpdateIntervalSlots {
		logrus.WithFields(fields).Warn("post_yields_and_update: cooldown not elapsed")
		return BandsDigestUpdated{}, ErrCooldownNotElapsed
	}

	needsUpdate := stale > p.StaleSlotsForBoost

	// Snapshot everything the commit touches so a later failure leaves the
	// pool untouched (§4.3: "side-effect free on failure").
	snapshot := *p
	snapshotBands := make([]Band, len(p.Bands))
	copy(snapshotBands, p.Bands)
	rollback := func() {
		*p = snapshot
		p.Bands = snapshotBands
	}

	p.YABps, p.YBBps, p.SpotPrice1e6 = yA, yB, spot
	p.EmaYABps = uint32(EmaStep64(uint64(p.EmaYABps), uint64(yA), p.AlphaYBps))
	p.EmaYBBps = uint32(EmaStep64(uint64(p.EmaYBBps), uint64(yB), p.AlphaYBps))
	p.EmaSpot1e6 = EmaStep64(p.EmaSpot1e6, spot, p.AlphaSpotBps)

	prevCenter := p.LastCenterPrice1e6
	candCenter, candWidth, err := p.PreviewCenterWidth()
	if err != nil {
		rollback()
		return BandsDigestUpdated{}, err
	}
	dCenterBps := DiffBps(maxU64(prevCenter, 1), candCenter)
	dWidthBps := diffU32(candWidth, p.LastWidthBps)

	twapBase := prevCenter
	if twapBase == 0 {
		twapBase = 1
	}
	p.TwapCenter1e6 = EmaStep64(p.TwapCenter1e6, twapBase, p.AlphaTwapBps)
	if DiffBps(maxU64(p.TwapCenter1e6, 1), candCenter) > uint64(p.MaxTwapDevBps) {
		rollback()
		logrus.WithFields(fields).Warn("post_yields_and_update: twap deviation too high")
		return BandsDigestUpdated{}, ErrDeviationTooHigh
	}

	if dCenterBps >= uint64(p.HystCenterBps) {
		p.HystCtrCenter++
	} else {
		p.HystCtrCenter = 0
	}
	if dWidthBps >= p.HystWidthBps {
		p.HystCtrWidth++
	} else {
		p.HystCtrWidth = 0
	}
	if p.HystCtrCenter < p.HystRequiredN && p.HystCtrWidth < p.HystRequiredN {
		rollback()
		logrus.WithFields(fields).Warn("post_yields_and_update: hysteresis not met")
		return BandsDigestUpdated{}, ErrHysteresisNotMet
	}

	volInput := dCenterBps
	if volInput > 65535 {
		volInput = 65535
	}
	p.VolEmaBps = EmaStep16(p.VolEmaBps, uint16(volInput), p.AlphaVolBps)

	feeCurrent := p.FeeBaseBps + p.FeeKPerBps*uint32(p.VolEmaBps)
	if feeCurrent > p.FeeMaxBps {
		feeCurrent = p.FeeMaxBps
	}
	p.FeeCurrentBps = feeCurrent

	weightsOnly := dCenterBps <= uint64(p.HystCenterBps)/2 && dWidthBps <= p.HystWidthBps/2

	if err := p.RecomputeBands(true, weightsOnly); err != nil {
		rollback()
		return BandsDigestUpdated{}, err
	}

	p.MarkInactiveByFloor()
	p.RenormalizeActiveWeights()

	p.LastUpdateSlot = now
	p.PostOnlyUntilSlot = now
	p.NeedsUpdate = needsUpdate

	if err := p.AssertInvariants(); err != nil {
		rollback()
		return BandsDigestUpdated{}, err
	}

	p.payBounty(custody, caller, dCenterBps+dWidthBps, needsUpdate)

	digest := BandsDigest(p.Bands)
	p.Metrics.Append(MetricsSample{
		Slot:        now,
		Center:      p.LastCenterPrice1e6,
		Width:       p.LastWidthBps,
		TotalWeight: p.TotalWeightBps,
		Hash:        digest,
	})

	logrus.WithFields(fields).WithField("digest", digest).Debug("post_yields_and_update: committed")

	return BandsDigestUpdated{
		EventVersion: EventVersion,
		Width:        p.LastWidthBps,
		Center:       p.LastCenterPrice1e6,
		TotalWeight:  p.TotalWeightBps,
		Digest:       digest,
		Slot:         now,
		FeeCurrent:   p.FeeCurrentBps,
		VolEma:       p.VolEmaBps,
	}, nil
}

// payBounty is best-effort: insufficient treasury balance is a silent
// skip, never an error (spec.md §7 Recovery policy).
func (p *Pool) payBounty(custody Custody, to Address, changeBps uint64, needsUpdate bool) {
	if p.IsPaused || p.Pending != nil {
		return
	}
	if custody == nil {
		return
	}

	change := changeBps
	if needsUpdate {
		boosted, err := ApplyBps(change, int64(p.BountyBoostBps))
		if err != nil {
			return
		}
		change = boosted
	}

	amount := change * p.BountyRateMicrounits / 1_000_000
	if amount > p.BountyMax {
		amount = p.BountyMax
	}
	if amount == 0 {
		return
	}

	if balA, err := custody.Balance(p.MintA, p.TreasuryA); err == nil && balA >= amount {
		if err := custody.TransferOut(p.MintA, p.TreasuryA, to, amount); err == nil {
			return
		}
	}
	if balB, err := custody.Balance(p.MintB, p.TreasuryB); err == nil && balB >= amount {
		_ = custody.TransferOut(p.MintB, p.TreasuryB, to, amount)
	}
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
