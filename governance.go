// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"github.com/sirupsen/logrus"
)

// ProposeParams queues a timelocked parameter change under admin quorum
// (spec.md §4.6 "Propose").
func (p *Pool) ProposeParams(now uint64, params SettableParams, queueDelay, execWindow uint64, signers SignerSet) (ParamsProposed, error) {
	if !p.hasQuorum(signers) {
		return ParamsProposed{}, ErrBadQuorum
	}
	if p.Pending != nil {
		return ParamsProposed{}, ErrProposalExists
	}
	earliest := now + queueDelay
	deadline := earliest + execWindow
	p.Pending = &GovernanceProposal{Params: params, QueuedAt: now, EarliestExec: earliest, Deadline: deadline}
	logrus.WithFields(logrus.Fields{"earliest": earliest, "deadline": deadline}).Debug("propose_params")
	return ParamsProposed{EventVersion: EventVersion, EarliestExec: earliest, Deadline: deadline}, nil
}

// ExecuteParams applies a queued proposal's Some fields within its
// execution window (spec.md §4.6 "Execute").
func (p *Pool) ExecuteParams(now uint64, signers SignerSet) (ParamsExecuted, error) {
	if !p.hasQuorum(signers) {
		return ParamsExecuted{}, ErrBadQuorum
	}
	if p.Pending == nil {
		return ParamsExecuted{}, ErrNoPendingParams
	}
	if p.Pending.Executed {
		return ParamsExecuted{}, ErrProposalExecuted
	}
	if now < p.Pending.EarliestExec || now > p.Pending.Deadline {
		return ParamsExecuted{}, ErrWindowClosed
	}

	if err := applySettableParams(p, p.Pending.Params); err != nil {
		return ParamsExecuted{}, err
	}

	p.Pending.Executed = true
	p.Pending = nil

	if err := p.RecomputeBands(false, false); err != nil {
		return ParamsExecuted{}, err
	}
	if err := p.AssertInvariants(); err != nil {
		return ParamsExecuted{}, err
	}

	logrus.Debug("execute_params: applied")
	return ParamsExecuted{EventVersion: EventVersion}, nil
}

func applySettableParams(p *Pool, s SettableParams) error {
	if s.NBands != nil {
		if *s.NBands < 1 || *s.NBands > MaxBands {
			return ErrInvalidNBands
		}
		p.NBands = *s.NBands
	}
	if s.BaseWidthBps != nil {
		p.BaseWidthBps = *s.BaseWidthBps
	}
	if s.MinWidthBps != nil {
		p.MinWidthBps = *s.MinWidthBps
	}
	if s.MaxWidthBps != nil {
		p.MaxWidthBps = *s.MaxWidthBps
	}
	if s.WidthSlopePerKbps != nil {
		p.WidthSlopePerKbps = *s.WidthSlopePerKbps
	}
	if s.BiasPerKbps != nil {
		p.BiasPerKbps = *s.BiasPerKbps
	}
	if s.DecayPerBandBps != nil {
		p.DecayPerBandBps = *s.DecayPerBandBps
	}
	if s.MaxCenterMoveBps != nil {
		p.MaxCenterMoveBps = *s.MaxCenterMoveBps
	}
	if s.MaxWidthChangeBps != nil {
		p.MaxWidthChangeBps = *s.MaxWidthChangeBps
	}
	if s.MaxWeightShiftBps != nil {
		p.MaxWeightShiftBps = *s.MaxWeightShiftBps
	}
	if s.MinUpdateIntervalSlots != nil {
		p.MinUpdateIntervalSlots = *s.MinUpdateIntervalSlots
	}
	if s.HystCenterBps != nil {
		p.HystCenterBps = *s.HystCenterBps
	}
	if s.HystWidthBps != nil {
		p.HystWidthBps = *s.HystWidthBps
	}
	if s.HystRequiredN != nil {
		p.HystRequiredN = *s.HystRequiredN
	}
	if s.AlphaYBps != nil {
		p.AlphaYBps = *s.AlphaYBps
	}
	if s.AlphaSpotBps != nil {
		p.AlphaSpotBps = *s.AlphaSpotBps
	}
	if s.AlphaTwapBps != nil {
		p.AlphaTwapBps = *s.AlphaTwapBps
	}
	if s.AlphaVolBps != nil {
		p.AlphaVolBps = *s.AlphaVolBps
	}
	if s.MaxTwapDevBps != nil {
		p.MaxTwapDevBps = *s.MaxTwapDevBps
	}
	if s.FeeBaseBps != nil {
		p.FeeBaseBps = *s.FeeBaseBps
	}
	if s.FeeKPerBps != nil {
		p.FeeKPerBps = *s.FeeKPerBps
	}
	if s.FeeMaxBps != nil {
		p.FeeMaxBps = *s.FeeMaxBps
	}
	if s.MakerRebateMaxBps != nil {
		p.MakerRebateMaxBps = *s.MakerRebateMaxBps
	}
	if s.TakerMinBps != nil {
		p.TakerMinBps = *s.TakerMinBps
	}
	if s.StpMode != nil {
		p.StpMode = *s.StpMode
	}
	if s.RouteMode != nil {
		p.RouteMode = *s.RouteMode
	}
	if s.DepositRatioMinBps != nil {
		p.DepositRatioMinBps = *s.DepositRatioMinBps
	}
	if s.DepositRatioMaxBps != nil {
		p.DepositRatioMaxBps = *s.DepositRatioMaxBps
	}
	if s.InactiveFloorA != nil {
		p.InactiveFloorA = *s.InactiveFloorA
	}
	if s.InactiveFloorB != nil {
		p.InactiveFloorB = *s.InactiveFloorB
	}
	if s.BountyRateMicrounits != nil {
		p.BountyRateMicrounits = *s.BountyRateMicrounits
	}
	if s.BountyMax != nil {
		p.BountyMax = *s.BountyMax
	}
	if s.StaleSlotsForBoost != nil {
		p.StaleSlotsForBoost = *s.StaleSlotsForBoost
	}
	if s.BountyBoostBps != nil {
		p.BountyBoostBps = *s.BountyBoostBps
	}
	if s.MinCuPrice != nil {
		p.MinCuPrice = *s.MinCuPrice
	}
	return nil
}

// SetRoles replaces the scoped risk/ops/fee admins under quorum.
func (p *Pool) SetRoles(risk, ops, fee Address, signers SignerSet) error {
	if !p.hasQuorum(signers) {
		return ErrBadQuorum
	}
	p.RiskAdmin, p.OpsAdmin, p.FeeAdmin = risk, ops, fee
	return nil
}

// SetUpdater replaces the updater identity and optional oracle co-signer
// requirement (risk-scoped).
func (p *Pool) SetUpdater(caller, updater, oracleSigner Address) error {
	if caller != p.RiskAdmin {
		return ErrUnauthorized
	}
	p.Updater = updater
	p.OracleSigner = oracleSigner
	return nil
}

// PauseFlags carries optional pause-flag updates; a nil field leaves that
// flag unchanged (spec.md §4.6 "Pause flags": each independently settable).
type PauseFlags struct {
	IsPaused       *bool
	PauseBands     *bool
	PauseDeposits  *bool
	PauseWithdraws *bool
	PauseOrderbook *bool
}

// SetPause applies the given pause-flag updates (risk-scoped).
func (p *Pool) SetPause(caller Address, flags PauseFlags) error {
	if caller != p.RiskAdmin {
		return ErrUnauthorized
	}
	if flags.IsPaused != nil {
		p.IsPaused = *flags.IsPaused
	}
	if flags.PauseBands != nil {
		p.PauseBands = *flags.PauseBands
	}
	if flags.PauseDeposits != nil {
		p.PauseDeposits = *flags.PauseDeposits
	}
	if flags.PauseWithdraws != nil {
		p.PauseWithdraws = *flags.PauseWithdraws
	}
	if flags.PauseOrderbook != nil {
		p.PauseOrderbook = *flags.PauseOrderbook
	}
	return nil
}

// EmergencyDrain moves amount from the chosen vault to its treasury;
// requires the pool to already be paused (risk-scoped).
func (p *Pool) EmergencyDrain(caller Address, fromA bool, amount uint64, custody Custody) (EmergencyDrain, error) {
	if caller != p.RiskAdmin {
		return EmergencyDrain{}, ErrUnauthorized
	}
	if !p.IsPaused {
		return EmergencyDrain{}, ErrNotPaused
	}
	if amount == 0 {
		return EmergencyDrain{}, ErrZeroAmount
	}

	mint, vault, treasury := p.MintA, p.VaultA, p.TreasuryA
	if !fromA {
		mint, vault, treasury = p.MintB, p.VaultB, p.TreasuryB
	}
	if custody != nil {
		if err := custody.TransferOut(mint, vault, treasury, amount); err != nil {
			return EmergencyDrain{}, err
		}
	}
	logrus.WithFields(logrus.Fields{"from_a": fromA, "amount": amount}).Warn("emergency_drain")
	return EmergencyDrain{EventVersion: EventVersion, FromA: fromA, Amount: amount, To: treasury}, nil
}

// ProposeMintRotation queues a replacement for one or both mint
// identities (risk-scoped; both fields optional).
func (p *Pool) ProposeMintRotation(caller Address, newMintA, newMintB *Address) error {
	if caller != p.RiskAdmin {
		return ErrUnauthorized
	}
	p.PendingMintRotation = &MintRotationProposal{NewMintA: newMintA, NewMintB: newMintB}
	return nil
}

// AcceptMintRotation applies the pending mint rotation (risk-scoped).
func (p *Pool) AcceptMintRotation(caller Address) error {
	if caller != p.RiskAdmin {
		return ErrUnauthorized
	}
	if p.PendingMintRotation == nil {
		return ErrNotFound
	}
	if p.PendingMintRotation.NewMintA != nil {
		p.MintA = *p.PendingMintRotation.NewMintA
	}
	if p.PendingMintRotation.NewMintB != nil {
		p.MintB = *p.PendingMintRotation.NewMintB
	}
	p.PendingMintRotation = nil
	return nil
}

// RecenterCompact folds inactive bands out of the vector and recomputes
// geometry for the reduced set (ops-scoped).
func (p *Pool) RecenterCompact(caller Address) error {
	if caller != p.OpsAdmin {
		return ErrUnauthorized
	}
	p.MarkInactiveByFloor()
	p.RenormalizeActiveWeights()
	p.CompactActiveBands()
	if err := p.RecomputeBands(false, false); err != nil {
		return err
	}
	return p.AssertInvariants()
}

// MigratePoolVersions advances the pool to targetVersion, default-
// initializing fields introduced by later versions (spec.md §4.6
// "Migrate"). Admin-gated: a single listed admin suffices, and the
// designated updater alone cannot trigger a migration.
func (p *Pool) MigratePoolVersions(caller Address, targetVersion uint8) (PoolMigrated, error) {
	if !p.isAdmin(caller) {
		return PoolMigrated{}, ErrUnauthorized
	}
	if p.Version >= targetVersion {
		return PoolMigrated{}, ErrAlreadyMigrated
	}

	from := p.Version
	if p.AlphaTwapBps == 0 {
		p.AlphaTwapBps = 500
	}
	if p.MaxTwapDevBps == 0 {
		p.MaxTwapDevBps = 500
	}
	p.Version = targetVersion

	if err := p.RecomputeBands(false, false); err != nil {
		return PoolMigrated{}, err
	}

	logrus.WithFields(logrus.Fields{"from": from, "to": targetVersion}).Debug("migrate_pool_versions")
	return PoolMigrated{EventVersion: EventVersion, FromVersion: from, ToVersion: targetVersion}, nil
}
