// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"encoding/hex"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// configDoc is the on-disk YAML shape for pool-initialization parameters;
// addresses are hex-encoded strings rather than raw bytes.
type configDoc struct {
	AdminThreshold uint8    `yaml:"admin_threshold"`
	Admins         []string `yaml:"admins"`
	RiskAdmin      string   `yaml:"risk_admin"`
	OpsAdmin       string   `yaml:"ops_admin"`
	FeeAdmin       string   `yaml:"fee_admin"`

	MintA     string `yaml:"mint_a"`
	MintB     string `yaml:"mint_b"`
	VaultA    string `yaml:"vault_a"`
	VaultB    string `yaml:"vault_b"`
	TreasuryA string `yaml:"treasury_a"`
	TreasuryB string `yaml:"treasury_b"`
	Bump      uint8  `yaml:"bump"`

	Updater      string `yaml:"updater"`
	OracleSigner string `yaml:"oracle_signer"`

	NBands            uint8  `yaml:"n_bands"`
	BaseWidthBps      uint32 `yaml:"base_width_bps"`
	MinWidthBps       uint32 `yaml:"min_width_bps"`
	MaxWidthBps       uint32 `yaml:"max_width_bps"`
	WidthSlopePerKbps uint32 `yaml:"width_slope_per_kbps"`
	BiasPerKbps       uint32 `yaml:"bias_per_kbps"`
	DecayPerBandBps   uint32 `yaml:"decay_per_band_bps"`

	MaxCenterMoveBps       uint32 `yaml:"max_center_move_bps"`
	MaxWidthChangeBps      uint32 `yaml:"max_width_change_bps"`
	MaxWeightShiftBps      uint32 `yaml:"max_weight_shift_bps"`
	MinUpdateIntervalSlots uint64 `yaml:"min_update_interval_slots"`

	HystCenterBps uint32 `yaml:"hyst_center_bps"`
	HystWidthBps  uint32 `yaml:"hyst_width_bps"`
	HystRequiredN uint8  `yaml:"hyst_required_n"`

	InitialYABps        uint32 `yaml:"initial_y_a_bps"`
	InitialYBBps        uint32 `yaml:"initial_y_b_bps"`
	InitialSpotPrice1e6 uint64 `yaml:"initial_spot_price_1e6"`

	AlphaYBps    uint32 `yaml:"alpha_y_bps"`
	AlphaSpotBps uint32 `yaml:"alpha_spot_bps"`
	AlphaTwapBps uint32 `yaml:"alpha_twap_bps"`
	AlphaVolBps  uint32 `yaml:"alpha_vol_bps"`

	MaxTwapDevBps uint32 `yaml:"max_twap_dev_bps"`

	FeeBaseBps uint32 `yaml:"fee_base_bps"`
	FeeKPerBps uint32 `yaml:"fee_k_per_bps"`
	FeeMaxBps  uint32 `yaml:"fee_max_bps"`

	MakerRebateMaxBps uint32 `yaml:"maker_rebate_max_bps"`
	TakerMinBps       uint32 `yaml:"taker_min_bps"`
	StpMode           uint8  `yaml:"stp_mode"`
	RouteMode         uint8  `yaml:"route_mode"`

	DepositRatioMinBps uint32 `yaml:"deposit_ratio_min_bps"`
	DepositRatioMaxBps uint32 `yaml:"deposit_ratio_max_bps"`

	InactiveFloorA uint64 `yaml:"inactive_floor_a"`
	InactiveFloorB uint64 `yaml:"inactive_floor_b"`

	BountyRateMicrounits uint64 `yaml:"bounty_rate_microunits"`
	BountyMax            uint64 `yaml:"bounty_max"`
	StaleSlotsForBoost   uint64 `yaml:"stale_slots_for_boost"`
	BountyBoostBps       uint32 `yaml:"bounty_boost_bps"`
	MinCuPrice           uint64 `yaml:"min_cu_price"`
}

func decodeAddress(s string) (Address, error) {
	var a Address
	if s == "" {
		return a, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("decode address %q: %w", s, err)
	}
	if len(raw) > len(a) {
		return a, fmt.Errorf("address %q too long", s)
	}
	copy(a[len(a)-len(raw):], raw)
	return a, nil
}

// LoadParams reads a YAML document describing pool-initialization
// parameters (spec.md §3's InitParamsV3-equivalent, ambient config per
// SPEC_FULL.md §4.0).
func LoadParams(r io.Reader) (InitParams, error) {
	var doc configDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return InitParams{}, fmt.Errorf("decode params: %w", err)
	}

	var params InitParams
	params.AdminThreshold = doc.AdminThreshold
	for i, s := range doc.Admins {
		if i >= MaxAdmins {
			break
		}
		a, err := decodeAddress(s)
		if err != nil {
			return InitParams{}, err
		}
		params.Admins[i] = a
	}

	var err error
	if params.RiskAdmin, err = decodeAddress(doc.RiskAdmin); err != nil {
		return InitParams{}, err
	}
	if params.OpsAdmin, err = decodeAddress(doc.OpsAdmin); err != nil {
		return InitParams{}, err
	}
	if params.FeeAdmin, err = decodeAddress(doc.FeeAdmin); err != nil {
		return InitParams{}, err
	}
	if params.MintA, err = decodeAddress(doc.MintA); err != nil {
		return InitParams{}, err
	}
	if params.MintB, err = decodeAddress(doc.MintB); err != nil {
		return InitParams{}, err
	}
	if params.VaultA, err = decodeAddress(doc.VaultA); err != nil {
		return InitParams{}, err
	}
	if params.VaultB, err = decodeAddress(doc.VaultB); err != nil {
		return InitParams{}, err
	}
	if params.TreasuryA, err = decodeAddress(doc.TreasuryA); err != nil {
		return InitParams{}, err
	}
	if params.TreasuryB, err = decodeAddress(doc.TreasuryB); err != nil {
		return InitParams{}, err
	}
	if params.Updater, err = decodeAddress(doc.Updater); err != nil {
		return InitParams{}, err
	}
	if params.OracleSigner, err = decodeAddress(doc.OracleSigner); err != nil {
		return InitParams{}, err
	}

	params.Bump = doc.Bump
	params.NBands = doc.NBands
	params.BaseWidthBps = doc.BaseWidthBps
	params.MinWidthBps = doc.MinWidthBps
	params.MaxWidthBps = doc.MaxWidthBps
	params.WidthSlopePerKbps = doc.WidthSlopePerKbps
	params.BiasPerKbps = doc.BiasPerKbps
	params.DecayPerBandBps = doc.DecayPerBandBps
	params.MaxCenterMoveBps = doc.MaxCenterMoveBps
	params.MaxWidthChangeBps = doc.MaxWidthChangeBps
	params.MaxWeightShiftBps = doc.MaxWeightShiftBps
	params.MinUpdateIntervalSlots = doc.MinUpdateIntervalSlots
	params.HystCenterBps = doc.HystCenterBps
	params.HystWidthBps = doc.HystWidthBps
	params.HystRequiredN = doc.HystRequiredN
	params.InitialYABps = doc.InitialYABps
	params.InitialYBBps = doc.InitialYBBps
	params.InitialSpotPrice1e6 = doc.InitialSpotPrice1e6
	params.AlphaYBps = doc.AlphaYBps
	params.AlphaSpotBps = doc.AlphaSpotBps
	params.AlphaTwapBps = doc.AlphaTwapBps
	params.AlphaVolBps = doc.AlphaVolBps
	params.MaxTwapDevBps = doc.MaxTwapDevBps
	params.FeeBaseBps = doc.FeeBaseBps
	params.FeeKPerBps = doc.FeeKPerBps
	params.FeeMaxBps = doc.FeeMaxBps
	params.MakerRebateMaxBps = doc.MakerRebateMaxBps
	params.TakerMinBps = doc.TakerMinBps
	params.StpMode = StpMode(doc.StpMode)
	params.RouteMode = RouteMode(doc.RouteMode)
	params.DepositRatioMinBps = doc.DepositRatioMinBps
	params.DepositRatioMaxBps = doc.DepositRatioMaxBps
	params.InactiveFloorA = doc.InactiveFloorA
	params.InactiveFloorB = doc.InactiveFloorB
	params.BountyRateMicrounits = doc.BountyRateMicrounits
	params.BountyMax = doc.BountyMax
	params.StaleSlotsForBoost = doc.StaleSlotsForBoost
	params.BountyBoostBps = doc.BountyBoostBps
	params.MinCuPrice = doc.MinCuPrice

	return params, nil
}
