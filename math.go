// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// ErrMathOverflow mirrors spec.md's Arithmetic error group.
var ErrMathOverflow = errors.New("math overflow")

// BpsScale is the basis-point scale (1/10000), used throughout for
// percentage-like quantities.
const BpsScale = 10_000

// maxUint128 bounds the extended intermediate domain apply_bps_i computes
// in, continuing interest_rate.go's "scale up, divide down, clamp" idiom
// but with a fixed-width checked intermediate instead of unbounded big.Int.
var maxUint128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

// ApplyBps returns clamp(v * max(10000+bps, 0) / 10000, 0, MaxUint64),
// computing the multiplication in a checked 128-bit intermediate domain so
// that a 64-bit value scaled by an arbitrary signed bps delta never
// silently wraps.
func ApplyBps(v uint64, bps int64) (uint64, error) {
	multiplier := BpsScale + bps
	if multiplier < 0 {
		multiplier = 0
	}

	vBig := uint256.NewInt(v)
	var mBig *uint256.Int
	if multiplier >= 0 {
		mBig = uint256.NewInt(uint64(multiplier))
	} else {
		mBig = uint256.NewInt(uint64(-multiplier))
	}

	product, overflow := new(uint256.Int).MulOverflow(vBig, mBig)
	if overflow || product.Cmp(maxUint128) >= 0 {
		return 0, ErrMathOverflow
	}

	product.Div(product, uint256.NewInt(BpsScale))
	if !product.IsUint64() {
		return math.MaxUint64, nil
	}
	return product.Uint64(), nil
}

// EmaStep64 advances a 64-bit EMA state: prev + alpha_bps*(new-prev)/10000.
func EmaStep64(prev, next uint64, alphaBps uint32) uint64 {
	delta := int64(next) - int64(prev)
	step := delta * int64(alphaBps) / BpsScale
	result := int64(prev) + step
	if result < 0 {
		return 0
	}
	if result > math.MaxInt64 {
		return math.MaxUint64
	}
	return uint64(result)
}

// EmaStep16 advances a 16-bit EMA state, used for vol_ema_bps and similar
// bounded counters.
func EmaStep16(prev, next uint16, alphaBps uint32) uint16 {
	delta := int64(next) - int64(prev)
	step := delta * int64(alphaBps) / BpsScale
	result := int64(prev) + step
	if result < 0 {
		return 0
	}
	if result > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(result)
}

// DiffBps returns |b-a| * 10000 / max(a,1), ordered around a.
func DiffBps(a, b uint64) uint64 {
	denom := a
	if denom == 0 {
		denom = 1
	}
	var diff uint64
	if b > a {
		diff = b - a
	} else {
		diff = a - b
	}
	num := new(uint256.Int).Mul(uint256.NewInt(diff), uint256.NewInt(BpsScale))
	num.Div(num, uint256.NewInt(denom))
	if !num.IsUint64() {
		return math.MaxUint64
	}
	return num.Uint64()
}

// MulDiv1e18 returns (a*growth)/1e18, truncating, used to turn a
// per-unit fee-growth delta into an owed amount for a given share count.
// Continues pool_manager.go's Donate fee-growth idiom
// (amount*Q128/liquidity), generalized to 1e18 scale and the inverse
// direction (shares*growthDelta/1e18).
func MulDiv1e18(a uint64, growth *uint256.Int) uint64 {
	if growth == nil || growth.IsZero() || a == 0 {
		return 0
	}
	product := new(uint256.Int).Mul(uint256.NewInt(a), growth)
	product.Div(product, e18)
	if !product.IsUint64() {
		return math.MaxUint64
	}
	return product.Uint64()
}

var e18 = func() *uint256.Int {
	n, _ := uint256.FromDecimal("1000000000000000000")
	return n
}()

// ClampU64 bounds v to [lo, hi].
func ClampU64(v, lo, hi uint64) uint64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampI64 bounds v to [lo, hi].
func ClampI64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BandsDigest computes the keccak-256 fingerprint of the band geometry:
// keccak256(concat_i(lower_i_le8 || upper_i_le8 || weight_i_le2)), as
// spec.md §4.1/§6 pins exactly (distinct from the BLAKE3 used elsewhere in
// the module for internal key derivation — see state.go).
func BandsDigest(bands []Band) [32]byte {
	h := sha3.NewLegacyKeccak256()
	var buf [18]byte
	for _, b := range bands {
		binary.LittleEndian.PutUint64(buf[0:8], b.Lower1e6)
		binary.LittleEndian.PutUint64(buf[8:16], b.Upper1e6)
		binary.LittleEndian.PutUint16(buf[16:18], b.WeightBps)
		h.Write(buf[:])
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}
