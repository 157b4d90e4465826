// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

// AssertInvariants checks the pool-level invariants that must hold at the
// end of every operation (spec.md §3). It never mutates state.
func (p *Pool) AssertInvariants() error {
	n := int(p.NBands)
	if n < 1 || n > MaxBands || len(p.Bands) != n {
		return ErrInvalidNBands
	}

	var weightSum uint32
	for i, b := range p.Bands {
		if b.Lower1e6 >= b.Upper1e6 {
			return ErrInvalidBandRange
		}
		if i > 0 && p.Bands[i-1].Upper1e6 > b.Lower1e6 {
			return ErrNonMonotonicBands
		}
		weightSum += uint32(b.WeightBps)
	}
	if weightSum != 10000 {
		return ErrWeightSumInvalid
	}

	if p.LastWidthBps < p.MinWidthBps || p.LastWidthBps > p.MaxWidthBps {
		return ErrInvariantViolated
	}

	for _, alpha := range []uint32{p.AlphaYBps, p.AlphaSpotBps, p.AlphaTwapBps, p.AlphaVolBps} {
		if alpha < 1 || alpha > 10000 {
			return ErrInvariantViolated
		}
	}

	nonDefaultAdmins := 0
	for _, a := range p.Admins {
		if !a.IsZero() {
			nonDefaultAdmins++
		}
	}
	if p.AdminThreshold < 1 || int(p.AdminThreshold) > nonDefaultAdmins {
		return ErrBadQuorum
	}

	for i := range p.Bands {
		b := &p.Bands[i]
		if b.FeeGrowthA1e18 == nil || b.FeeGrowthB1e18 == nil {
			return ErrInvariantViolated
		}
	}

	return nil
}

// hasQuorum reports whether signers contains at least p.AdminThreshold
// distinct identities drawn from p.Admins.
func (p *Pool) hasQuorum(signers SignerSet) bool {
	if signers == nil {
		return false
	}
	count := 0
	for _, a := range p.Admins {
		if a.IsZero() {
			continue
		}
		if signers.HasSigner(a) {
			count++
		}
	}
	return count >= int(p.AdminThreshold)
}

// isUpdaterOrAdmin reports whether caller is the designated updater or a
// listed admin.
func (p *Pool) isUpdaterOrAdmin(caller Address) bool {
	if !p.Updater.IsZero() && caller == p.Updater {
		return true
	}
	return p.isAdmin(caller)
}

// isAdmin reports whether caller is a listed admin. Unlike
// isUpdaterOrAdmin, the designated updater does not satisfy this check:
// operations gated on isAdmin alone (e.g. MigratePoolVersions) are
// admin-only, per spec.md §4.6.
func (p *Pool) isAdmin(caller Address) bool {
	for _, a := range p.Admins {
		if !a.IsZero() && a == caller {
			return true
		}
	}
	return false
}
