// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestApplyBps(t *testing.T) {
	tests := []struct {
		name    string
		v       uint64
		bps     int64
		want    uint64
		wantErr bool
	}{
		{name: "identity", v: 1_000_000, bps: 0, want: 1_000_000},
		{name: "plus ten percent", v: 1_000_000, bps: 1000, want: 1_100_000},
		{name: "minus ten percent", v: 1_000_000, bps: -1000, want: 900_000},
		{name: "clamps negative multiplier to zero", v: 1_000_000, bps: -20000, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyBps(tt.v, tt.bps)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEmaStep64(t *testing.T) {
	tests := []struct {
		name     string
		prev     uint64
		next     uint64
		alphaBps uint32
		want     uint64
	}{
		{name: "no movement at alpha zero", prev: 100, next: 200, alphaBps: 0, want: 100},
		{name: "full jump at alpha 10000", prev: 100, next: 200, alphaBps: 10000, want: 200},
		{name: "half step", prev: 100, next: 200, alphaBps: 5000, want: 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EmaStep64(tt.prev, tt.next, tt.alphaBps)
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDiffBps(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want uint64
	}{
		{name: "equal", a: 1_000_000, b: 1_000_000, want: 0},
		{name: "up 50bps", a: 1_000_000, b: 1_005_000, want: 50},
		{name: "down 50bps", a: 1_000_000, b: 995_000, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffBps(tt.a, tt.b)
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMulDiv1e18(t *testing.T) {
	growth := new(uint256.Int).Mul(uint256.NewInt(30), e18) // 30e18
	got := MulDiv1e18(10_000, growth)
	// scenario 5 of spec.md §8: 10_000 shares * 30e18 growth / 1e18 = 300_000
	if got != 300_000 {
		t.Fatalf("got %d, want 300000", got)
	}
}

func TestBandsDigestDeterministic(t *testing.T) {
	b1 := NewBand()
	b1.Lower1e6, b1.Upper1e6, b1.WeightBps = 1_000_000, 1_005_000, 2500
	b2 := NewBand()
	b2.Lower1e6, b2.Upper1e6, b2.WeightBps = 1_005_000, 1_010_000, 2500

	d1 := BandsDigest([]Band{b1, b2})
	d2 := BandsDigest([]Band{b1, b2})
	if d1 != d2 {
		t.Fatalf("digest not deterministic")
	}

	b2.WeightBps = 2501
	d3 := BandsDigest([]Band{b1, b2})
	if d1 == d3 {
		t.Fatalf("digest did not change with geometry")
	}
}
