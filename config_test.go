// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"strings"
	"testing"
)

func TestLoadParamsPopulatesBothSides(t *testing.T) {
	doc := `
admin_threshold: 1
admins: ["0000000000000000000000000000000000000000000000000000000000000001"]
risk_admin: "0000000000000000000000000000000000000000000000000000000000000002"
ops_admin: "0000000000000000000000000000000000000000000000000000000000000003"
fee_admin: "0000000000000000000000000000000000000000000000000000000000000004"
mint_a: "00000000000000000000000000000000000000000000000000000000000000aa"
mint_b: "00000000000000000000000000000000000000000000000000000000000000bb"
vault_a: "00000000000000000000000000000000000000000000000000000000000000cc"
vault_b: "00000000000000000000000000000000000000000000000000000000000000dd"
treasury_a: "00000000000000000000000000000000000000000000000000000000000000ee"
treasury_b: "00000000000000000000000000000000000000000000000000000000000000ff"
updater: "0000000000000000000000000000000000000000000000000000000000000020"
n_bands: 4
base_width_bps: 500
min_width_bps: 100
max_width_bps: 1000
alpha_y_bps: 2000
alpha_spot_bps: 2000
alpha_twap_bps: 500
alpha_vol_bps: 2000
`
	params, err := LoadParams(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if params.MintA.IsZero() || params.MintB.IsZero() {
		t.Fatalf("mint_a/mint_b not populated: a=%v b=%v", params.MintA, params.MintB)
	}
	if params.MintA == params.MintB {
		t.Fatalf("mint_a and mint_b decoded to the same address")
	}

	if params.VaultA.IsZero() || params.VaultB.IsZero() {
		t.Fatalf("vault_a/vault_b not populated: a=%v b=%v", params.VaultA, params.VaultB)
	}
	if params.VaultA == params.VaultB {
		t.Fatalf("vault_a and vault_b decoded to the same address")
	}

	if params.TreasuryA.IsZero() || params.TreasuryB.IsZero() {
		t.Fatalf("treasury_a/treasury_b not populated: a=%v b=%v", params.TreasuryA, params.TreasuryB)
	}
	if params.TreasuryA == params.TreasuryB {
		t.Fatalf("treasury_a and treasury_b decoded to the same address")
	}

	if params.NBands != 4 || params.BaseWidthBps != 500 {
		t.Fatalf("scalar fields not decoded: n_bands=%d base_width_bps=%d", params.NBands, params.BaseWidthBps)
	}
}

func TestLoadParamsRejectsUnknownField(t *testing.T) {
	doc := "bogus_field: 1\n"
	_, err := LoadParams(strings.NewReader(doc))
	if err == nil {
		t.Fatalf("expected an error decoding an unknown field")
	}
}
