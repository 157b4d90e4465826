// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// AddLiquidity deposits into a chosen band and mints a position receipt
// (spec.md §4.4 "Add"). Shares minted are max(amountA, amountB); the mint
// is not pro-rata to the band's existing reserves or total shares.
func (p *Pool) AddLiquidity(now uint64, bandIdx uint16, amountA, amountB uint64, nonce, minUnlockAfter uint64, owner Address, custody Custody) (LiquidityAdded, error) {
	if p.IsPaused || p.PauseDeposits {
		return LiquidityAdded{}, ErrPaused
	}
	if int(bandIdx) >= len(p.Bands) {
		return LiquidityAdded{}, ErrInvalidBandIndex
	}
	if amountA == 0 && amountB == 0 {
		return LiquidityAdded{}, ErrZeroAmount
	}

	band := &p.Bands[bandIdx]
	if !band.IsActive {
		return LiquidityAdded{}, ErrBandInactive
	}

	if amountA > 0 && amountB > 0 {
		rBps, err := depositRatioBps(amountA, amountB, p.LastCenterPrice1e6)
		if err != nil {
			return LiquidityAdded{}, err
		}
		if rBps < uint64(p.DepositRatioMinBps) || rBps > uint64(p.DepositRatioMaxBps) {
			return LiquidityAdded{}, ErrDepositRatioOutOfBounds
		}
	}

	if custody != nil {
		if amountA > 0 {
			if err := custody.TransferIn(p.MintA, owner, p.VaultA, amountA); err != nil {
				return LiquidityAdded{}, err
			}
		}
		if amountB > 0 {
			if err := custody.TransferIn(p.MintB, owner, p.VaultB, amountB); err != nil {
				return LiquidityAdded{}, err
			}
		}
	}

	shares := amountA
	if amountB > shares {
		shares = amountB
	}
	if shares == 0 {
		return LiquidityAdded{}, ErrZeroShares
	}

	band.ReservesA += amountA
	band.ReservesB += amountB
	band.UtilA += amountA
	band.UtilB += amountB
	band.TotalShares += shares

	if p.Positions == nil {
		p.Positions = make(map[PositionKey]*Position)
	}
	key := PositionKey{Owner: owner, BandIndex: bandIdx, Nonce: nonce}
	pos, ok := p.Positions[key]
	if !ok {
		pos = &Position{Owner: owner, BandIndex: bandIdx, Nonce: nonce}
		p.Positions[key] = pos
	}
	pos.Shares += shares
	pos.CheckpointFeeGrowthA1e18 = new(uint256.Int).Set(band.FeeGrowthA1e18)
	pos.CheckpointFeeGrowthB1e18 = new(uint256.Int).Set(band.FeeGrowthB1e18)
	pos.MinUnlockSlot = now + minUnlockAfter
	pos.Approved = ZeroAddress

	logrus.WithFields(logrus.Fields{"owner": owner, "band": bandIdx, "shares": shares}).Debug("add_liquidity")

	return LiquidityAdded{
		EventVersion: EventVersion,
		Owner:        owner,
		BandIndex:    bandIdx,
		AmountA:      amountA,
		AmountB:      amountB,
		SharesMinted: shares,
	}, nil
}

// RemoveLiquidity burns shares and pays out the pro-rata reserve share
// (spec.md §4.4 "Remove").
func (p *Pool) RemoveLiquidity(now uint64, key PositionKey, sharesToBurn uint64, close bool, caller Address, custody Custody) (LiquidityRemoved, error) {
	if p.IsPaused || p.PauseWithdraws {
		return LiquidityRemoved{}, ErrPaused
	}
	pos, ok := p.Positions[key]
	if !ok {
		return LiquidityRemoved{}, ErrNotFound
	}
	if now < pos.MinUnlockSlot {
		return LiquidityRemoved{}, ErrPositionLocked
	}
	if caller != pos.Owner && (pos.Approved.IsZero() || caller != pos.Approved) {
		return LiquidityRemoved{}, ErrUnauthorized
	}
	if sharesToBurn == 0 || sharesToBurn > pos.Shares {
		return LiquidityRemoved{}, ErrInvalidAmount
	}
	if int(pos.BandIndex) >= len(p.Bands) {
		return LiquidityRemoved{}, ErrInvalidBandIndex
	}

	band := &p.Bands[pos.BandIndex]
	if band.TotalShares == 0 {
		return LiquidityRemoved{}, ErrInvariantViolated
	}

	outA := band.ReservesA * sharesToBurn / band.TotalShares
	outB := band.ReservesB * sharesToBurn / band.TotalShares

	band.ReservesA -= outA
	band.ReservesB -= outB
	band.TotalShares -= sharesToBurn
	pos.Shares -= sharesToBurn

	if custody != nil {
		if outA > 0 {
			if err := custody.TransferOut(p.MintA, p.VaultA, caller, outA); err != nil {
				return LiquidityRemoved{}, err
			}
		}
		if outB > 0 {
			if err := custody.TransferOut(p.MintB, p.VaultB, caller, outB); err != nil {
				return LiquidityRemoved{}, err
			}
		}
	}

	closed := false
	if pos.Shares == 0 && close {
		delete(p.Positions, key)
		closed = true
	}

	logrus.WithFields(logrus.Fields{"owner": pos.Owner, "band": pos.BandIndex, "shares": sharesToBurn}).Debug("remove_liquidity")

	return LiquidityRemoved{
		EventVersion: EventVersion,
		Owner:        pos.Owner,
		BandIndex:    pos.BandIndex,
		AmountA:      outA,
		AmountB:      outB,
		SharesBurned: sharesToBurn,
		Closed:       closed,
	}, nil
}

// CollectFees pays out the fee growth accrued since the position's last
// checkpoint (spec.md §4.4 "Collect fees").
func (p *Pool) CollectFees(key PositionKey, caller Address, custody Custody) (FeesCollected, error) {
	pos, ok := p.Positions[key]
	if !ok {
		return FeesCollected{}, ErrNotFound
	}
	if caller != pos.Owner && (pos.Approved.IsZero() || caller != pos.Approved) {
		return FeesCollected{}, ErrUnauthorized
	}
	if int(pos.BandIndex) >= len(p.Bands) {
		return FeesCollected{}, ErrInvalidBandIndex
	}
	band := &p.Bands[pos.BandIndex]

	deltaA := new(uint256.Int).Sub(band.FeeGrowthA1e18, pos.CheckpointFeeGrowthA1e18)
	deltaB := new(uint256.Int).Sub(band.FeeGrowthB1e18, pos.CheckpointFeeGrowthB1e18)
	owedA := MulDiv1e18(pos.Shares, deltaA)
	owedB := MulDiv1e18(pos.Shares, deltaB)

	pos.CheckpointFeeGrowthA1e18 = new(uint256.Int).Set(band.FeeGrowthA1e18)
	pos.CheckpointFeeGrowthB1e18 = new(uint256.Int).Set(band.FeeGrowthB1e18)

	if custody != nil {
		if owedA > 0 {
			if err := custody.TransferOut(p.MintA, p.TreasuryA, caller, owedA); err != nil {
				return FeesCollected{}, err
			}
		}
		if owedB > 0 {
			if err := custody.TransferOut(p.MintB, p.TreasuryB, caller, owedB); err != nil {
				return FeesCollected{}, err
			}
		}
	}

	return FeesCollected{
		EventVersion: EventVersion,
		Owner:        pos.Owner,
		BandIndex:    pos.BandIndex,
		AmountA:      owedA,
		AmountB:      owedB,
	}, nil
}

// ApprovePosition sets (or clears, with a zero Address) the position's
// delegate.
func (p *Pool) ApprovePosition(key PositionKey, caller, spender Address) error {
	pos, ok := p.Positions[key]
	if !ok {
		return ErrNotFound
	}
	if caller != pos.Owner {
		return ErrUnauthorized
	}
	pos.Approved = spender
	return nil
}

// TransferPosition reassigns ownership of a position receipt.
func (p *Pool) TransferPosition(key PositionKey, caller, newOwner Address) error {
	pos, ok := p.Positions[key]
	if !ok {
		return ErrNotFound
	}
	if caller != pos.Owner {
		return ErrUnauthorized
	}
	newKey := PositionKey{Owner: newOwner, BandIndex: pos.BandIndex, Nonce: pos.Nonce}
	pos.Owner = newOwner
	pos.Approved = ZeroAddress
	delete(p.Positions, key)
	p.Positions[newKey] = pos
	return nil
}

// depositRatioBps computes spec.md §4.4's r_bps =
// (amount_a * last_center * 1e6) / amount_b / 100 in a checked wide domain.
func depositRatioBps(amountA, amountB, lastCenter uint64) (uint64, error) {
	num := new(uint256.Int).Mul(uint256.NewInt(amountA), uint256.NewInt(lastCenter))
	num.Mul(num, uint256.NewInt(1_000_000))
	num.Div(num, uint256.NewInt(amountB))
	num.Div(num, uint256.NewInt(100))
	if !num.IsUint64() {
		return 0, ErrMathOverflow
	}
	return num.Uint64(), nil
}
