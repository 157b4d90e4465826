// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import "github.com/sirupsen/logrus"

// InitializePool constructs a new pool from InitParams, lays out the
// initial band vector, and returns the PoolInitialized event (spec.md §6
// initialize_pool).
func InitializePool(now uint64, params InitParams) (*Pool, PoolInitialized, error) {
	if params.NBands < 1 || params.NBands > MaxBands {
		return nil, PoolInitialized{}, ErrInvalidNBands
	}
	nonDefaultAdmins := 0
	for _, a := range params.Admins {
		if !a.IsZero() {
			nonDefaultAdmins++
		}
	}
	if params.AdminThreshold < 1 || int(params.AdminThreshold) > nonDefaultAdmins {
		return nil, PoolInitialized{}, ErrBadQuorum
	}

	p := &Pool{
		Version:        3,
		Bump:           params.Bump,
		AdminThreshold: params.AdminThreshold,
		Admins:         params.Admins,
		RiskAdmin:      params.RiskAdmin,
		OpsAdmin:       params.OpsAdmin,
		FeeAdmin:       params.FeeAdmin,

		MintA: params.MintA, MintB: params.MintB,
		VaultA: params.VaultA, VaultB: params.VaultB,
		TreasuryA: params.TreasuryA, TreasuryB: params.TreasuryB,

		Updater:      params.Updater,
		OracleSigner: params.OracleSigner,

		NBands:            params.NBands,
		BaseWidthBps:      params.BaseWidthBps,
		MinWidthBps:       params.MinWidthBps,
		MaxWidthBps:       params.MaxWidthBps,
		WidthSlopePerKbps: params.WidthSlopePerKbps,
		BiasPerKbps:       params.BiasPerKbps,
		DecayPerBandBps:   params.DecayPerBandBps,

		MaxCenterMoveBps:       params.MaxCenterMoveBps,
		MaxWidthChangeBps:      params.MaxWidthChangeBps,
		MaxWeightShiftBps:      params.MaxWeightShiftBps,
		MinUpdateIntervalSlots: params.MinUpdateIntervalSlots,

		HystCenterBps: params.HystCenterBps,
		HystWidthBps:  params.HystWidthBps,
		HystRequiredN: params.HystRequiredN,

		YABps: params.InitialYABps, YBBps: params.InitialYBBps,
		SpotPrice1e6: params.InitialSpotPrice1e6,
		EmaYABps:     params.InitialYABps, EmaYBBps: params.InitialYBBps,
		EmaSpot1e6:    params.InitialSpotPrice1e6,
		TwapCenter1e6: params.InitialSpotPrice1e6,

		AlphaYBps: params.AlphaYBps, AlphaSpotBps: params.AlphaSpotBps,
		AlphaTwapBps: params.AlphaTwapBps, AlphaVolBps: params.AlphaVolBps,

		MaxTwapDevBps: params.MaxTwapDevBps,

		FeeBaseBps: params.FeeBaseBps, FeeKPerBps: params.FeeKPerBps, FeeMaxBps: params.FeeMaxBps,
		FeeCurrentBps: params.FeeBaseBps,

		MakerRebateMaxBps: params.MakerRebateMaxBps,
		TakerMinBps:       params.TakerMinBps,
		StpMode:           params.StpMode,
		RouteMode:         params.RouteMode,

		DepositRatioMinBps: params.DepositRatioMinBps,
		DepositRatioMaxBps: params.DepositRatioMaxBps,

		InactiveFloorA: params.InactiveFloorA,
		InactiveFloorB: params.InactiveFloorB,

		BountyRateMicrounits: params.BountyRateMicrounits,
		BountyMax:            params.BountyMax,
		StaleSlotsForBoost:   params.StaleSlotsForBoost,
		BountyBoostBps:       params.BountyBoostBps,
		MinCuPrice:           params.MinCuPrice,

		// No update has committed yet. PlaceOrder restricts only the slot
		// equal to PostOnlyUntilSlot, so this sentinel restricts none.
		PostOnlyUntilSlot: ^uint64(0),

		Positions: make(map[PositionKey]*Position),
	}

	if err := p.RecomputeBands(false, false); err != nil {
		return nil, PoolInitialized{}, err
	}
	p.LastUpdateSlot = now

	if err := p.AssertInvariants(); err != nil {
		return nil, PoolInitialized{}, err
	}

	logrus.WithFields(logrus.Fields{"n_bands": p.NBands}).Debug("initialize_pool")

	return p, PoolInitialized{EventVersion: EventVersion, MintA: p.MintA, MintB: p.MintB, NBands: p.NBands}, nil
}

// VaultAuthority derives the signing handle a host adapter must use to
// move tokens out of this pool's vaults (spec.md §5, §9).
func (p *Pool) VaultAuthority() Address {
	return DeriveVaultAuthority(p.MintA, p.MintB, p.Bump)
}
