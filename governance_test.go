// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import "testing"

func TestProposeAndExecuteParams(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	signers := NewSignerSet(p.Admins[0])

	newBase := uint32(700)
	_, err = p.ProposeParams(0, SettableParams{BaseWidthBps: &newBase}, 10, 100, signers)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if p.Pending == nil {
		t.Fatalf("no pending proposal queued")
	}

	// too early: earliest_exec is queued_at+10.
	_, err = p.ExecuteParams(5, signers)
	if err != ErrWindowClosed {
		t.Fatalf("err = %v, want ErrWindowClosed", err)
	}

	if _, err := p.ExecuteParams(10, signers); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if p.BaseWidthBps != 700 {
		t.Fatalf("base_width_bps = %d, want 700", p.BaseWidthBps)
	}
	if p.Pending != nil {
		t.Fatalf("pending proposal not cleared after execution")
	}
}

func TestProposeParamsRejectsWithoutQuorum(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	_, err = p.ProposeParams(0, SettableParams{}, 10, 100, NewSignerSet(Address{200}))
	if err != ErrBadQuorum {
		t.Fatalf("err = %v, want ErrBadQuorum", err)
	}
}

func TestProposeParamsRejectsDuplicate(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	signers := NewSignerSet(p.Admins[0])
	if _, err := p.ProposeParams(0, SettableParams{}, 10, 100, signers); err != nil {
		t.Fatalf("first propose: %v", err)
	}
	_, err = p.ProposeParams(0, SettableParams{}, 10, 100, signers)
	if err != ErrProposalExists {
		t.Fatalf("err = %v, want ErrProposalExists", err)
	}
}

func TestSetPauseRiskScoped(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	on := true
	if err := p.SetPause(Address{99}, PauseFlags{IsPaused: &on}); err != ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if err := p.SetPause(p.RiskAdmin, PauseFlags{IsPaused: &on}); err != nil {
		t.Fatalf("set pause: %v", err)
	}
	if !p.IsPaused {
		t.Fatalf("pool not paused after SetPause")
	}
}

func TestEmergencyDrainRequiresPause(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	custody := newFakeCustody()
	custody.balances[custodyKey(p.MintA, p.VaultA)] = 500

	_, err = p.EmergencyDrain(p.RiskAdmin, true, 100, custody)
	if err != ErrNotPaused {
		t.Fatalf("err = %v, want ErrNotPaused", err)
	}

	on := true
	if err := p.SetPause(p.RiskAdmin, PauseFlags{IsPaused: &on}); err != nil {
		t.Fatalf("set pause: %v", err)
	}
	ev, err := p.EmergencyDrain(p.RiskAdmin, true, 100, custody)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if ev.Amount != 100 || ev.To != p.TreasuryA {
		t.Fatalf("drain event = %+v, want amount=100 to=treasury_a", ev)
	}
	bal, _ := custody.Balance(p.MintA, p.TreasuryA)
	if bal != 100 {
		t.Fatalf("treasury_a balance = %d, want 100", bal)
	}
}

func TestMintRotationProposeAndAccept(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	newA := Address{77}
	if err := p.ProposeMintRotation(p.RiskAdmin, &newA, nil); err != nil {
		t.Fatalf("propose rotation: %v", err)
	}
	if err := p.AcceptMintRotation(p.RiskAdmin); err != nil {
		t.Fatalf("accept rotation: %v", err)
	}
	if p.MintA != newA {
		t.Fatalf("mint_a = %v, want %v", p.MintA, newA)
	}
	if p.PendingMintRotation != nil {
		t.Fatalf("pending rotation not cleared")
	}
}

func TestMigratePoolVersionsAlreadyMigrated(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	_, err = p.MigratePoolVersions(p.Admins[0], p.Version)
	if err != ErrAlreadyMigrated {
		t.Fatalf("err = %v, want ErrAlreadyMigrated", err)
	}
}

func TestMigratePoolVersionsRejectsUpdater(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if p.Updater == p.Admins[0] {
		t.Fatalf("fixture updater must differ from an admin for this test to be meaningful")
	}
	_, err = p.MigratePoolVersions(p.Updater, p.Version+1)
	if err != ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized: migration must be admin-gated, not updater-eligible", err)
	}
}

func TestRecenterCompactDropsInactiveBands(t *testing.T) {
	p, _, err := InitializePool(0, baseInitParams())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	p.InactiveFloorA, p.InactiveFloorB = 1, 1
	p.Bands[0].ReservesA, p.Bands[0].ReservesB = 0, 0 // now below both floors
	for i := 1; i < len(p.Bands); i++ {
		p.Bands[i].ReservesA = 1 // at the floor, so these stay active
	}

	if err := p.RecenterCompact(p.OpsAdmin); err != nil {
		t.Fatalf("recenter compact: %v", err)
	}
	if len(p.Bands) != 3 {
		t.Fatalf("len(bands) = %d, want 3 after dropping one inactive band", len(p.Bands))
	}
	var sum uint32
	for _, b := range p.Bands {
		sum += uint32(b.WeightBps)
	}
	if sum != 10000 {
		t.Fatalf("weight sum after compaction = %d, want 10000", sum)
	}
}
