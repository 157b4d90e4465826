// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import "testing"

func TestPostYieldsAndUpdateHysteresisReject(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	before := *p

	_, err = p.PostYieldsAndUpdate(1, 0, 0, 1_000_000, 0, p.Updater, nil, nil)
	if err != ErrHysteresisNotMet {
		t.Fatalf("err = %v, want ErrHysteresisNotMet", err)
	}
	if p.LastCenterPrice1e6 != before.LastCenterPrice1e6 || p.LastUpdateSlot != before.LastUpdateSlot {
		t.Fatalf("pool mutated on rejected update")
	}
}

func TestPostYieldsAndUpdateCommits(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	ev, err := p.PostYieldsAndUpdate(1, 0, 0, 1_050_000, 0, p.Updater, nil, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.LastCenterPrice1e6 != 1_010_000 {
		t.Fatalf("center = %d, want 1010000 (EMA-smoothed spot, at the max_center_move_bps bound)", p.LastCenterPrice1e6)
	}
	if p.LastWidthBps != 500 {
		t.Fatalf("width = %d, want 500", p.LastWidthBps)
	}
	if ev.Center != p.LastCenterPrice1e6 || ev.Width != p.LastWidthBps {
		t.Fatalf("event did not mirror committed geometry")
	}
	if p.LastUpdateSlot != 1 {
		t.Fatalf("last_update_slot = %d, want 1", p.LastUpdateSlot)
	}
	if p.Metrics.Len() != 1 {
		t.Fatalf("metrics len = %d, want 1", p.Metrics.Len())
	}
}

func TestPostYieldsAndUpdateUnauthorized(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	_, err = p.PostYieldsAndUpdate(1, 0, 0, 1_050_000, 0, Address{99}, nil, nil)
	if err != ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestPostYieldsAndUpdatePausedGate(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	p.IsPaused = true
	_, err = p.PostYieldsAndUpdate(1, 0, 0, 1_050_000, 0, p.Updater, nil, nil)
	if err != ErrPaused {
		t.Fatalf("err = %v, want ErrPaused", err)
	}
}

func TestPostYieldsAndUpdateCooldown(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// MinUpdateIntervalSlots is 1, so calling at the same slot as init
	// (slot 0) must be rejected.
	_, err = p.PostYieldsAndUpdate(0, 0, 0, 1_050_000, 0, p.Updater, nil, nil)
	if err != ErrCooldownNotElapsed {
		t.Fatalf("err = %v, want ErrCooldownNotElapsed", err)
	}
}
