// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dlmm implements a yield-sensitive, banded automated market maker
// coupled with a central-limit order book sharing a common pricing grid.
// The package is a pure state machine over typed records: the host chain's
// account model, token custody, and event transport are external
// collaborators reached only through the Custody/SignerSet interfaces in
// state.go.
package dlmm

import (
	"errors"

	"github.com/holiman/uint256"
)

// Protocol-wide constants (spec.md §6).
const (
	MaxAdmins               = 8
	MaxBands                = 64
	MetricsCap              = 128
	EventQueueCap           = 256
	DefaultMaxQueuePerLevel = 64
	EventVersion            = 3
	OutReasonCancel         = 1
)

// Side identifies a CLOB order/level side.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

// TifKind identifies a time-in-force family (spec.md §4.5, GLOSSARY).
type TifKind uint8

const (
	TifIOC TifKind = iota
	TifGTC
	TifGTT
)

// TifParam carries the TIF kind plus, for GTT, the expiry slot.
type TifParam struct {
	Kind      TifKind
	GttExpiry uint64
}

// RouteMode selects the taker routing policy (spec.md §4.5).
type RouteMode uint8

const (
	RouteBookFirst RouteMode = iota
	RouteDlmmFirst
)

// StpMode records the configured self-trade-prevention mode (spec.md §4.5).
// The matching code does not consult it: every mode matches as StpNone.
type StpMode uint8

const (
	StpNone StpMode = iota
	StpDecrementAndCancel
	StpCancelNewest
	StpCancelOldest
)

// BookEventKind tags a book-event-ring entry.
type BookEventKind uint8

const (
	BookEventPlace BookEventKind = iota
	BookEventFill
	BookEventOut
)

// ---------------------------------------------------------------------
// Errors — grouped exactly per spec.md §7.
// ---------------------------------------------------------------------

// Authorization
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrBadMultisig         = errors.New("bad multisig")
	ErrBadQuorum           = errors.New("bad quorum")
	ErrMissingOracleSigner = errors.New("missing oracle co-signer")
)

// Lifecycle
var (
	ErrAlreadyMigrated  = errors.New("already migrated")
	ErrProposalExists   = errors.New("proposal already exists")
	ErrNoPendingParams  = errors.New("no pending params")
	ErrProposalExecuted = errors.New("proposal already executed")
	ErrWindowClosed     = errors.New("execution window closed")
)

// Gating
var (
	ErrPaused             = errors.New("paused")
	ErrNotPaused          = errors.New("not paused")
	ErrCooldownNotElapsed = errors.New("cooldown not elapsed")
	ErrCuPriceTooLow      = errors.New("cu price too low")
	ErrPositionLocked     = errors.New("position locked")
)

// Risk/filters
var (
	ErrDeviationTooHigh = errors.New("twap deviation too high")
	ErrHysteresisNotMet = errors.New("hysteresis not met")
)

// Invariants
var (
	ErrInvariantViolated = errors.New("invariant violated")
	ErrNonMonotonicBands = errors.New("non-monotonic bands")
	ErrInvalidBandRange  = errors.New("invalid band range")
	ErrWeightSumInvalid  = errors.New("weight sum invalid")
	ErrVaultMintMismatch = errors.New("vault mint mismatch")
)

// Arguments
var (
	ErrInvalidNBands           = errors.New("invalid n_bands")
	ErrParamOutOfRange         = errors.New("param out of range")
	ErrInvalidBandIndex        = errors.New("invalid band index")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrZeroAmount              = errors.New("zero amount")
	ErrZeroShares              = errors.New("zero shares")
	ErrDepositRatioOutOfBounds = errors.New("deposit ratio out of bounds")
	ErrBandInactive            = errors.New("band inactive")
	ErrNotFound                = errors.New("not found")
)

// ---------------------------------------------------------------------
// Band / Position
// ---------------------------------------------------------------------

// Band is a contiguous price interval with owned reserves, a normalized
// weight, and per-asset monotone fee-growth accumulators.
type Band struct {
	Lower1e6 uint64
	Upper1e6 uint64

	WeightBps uint16

	FeeGrowthA1e18 *uint256.Int
	FeeGrowthB1e18 *uint256.Int

	ReservesA uint64
	ReservesB uint64

	TotalShares uint64

	UtilA uint64
	UtilB uint64

	IsActive bool
}

// NewBand returns a zeroed band with initialized fee-growth accumulators.
func NewBand() Band {
	return Band{
		FeeGrowthA1e18: new(uint256.Int),
		FeeGrowthB1e18: new(uint256.Int),
		IsActive:       true,
	}
}

// MidPrice1e6 returns the band's midpoint price.
func (b Band) MidPrice1e6() uint64 {
	return (b.Lower1e6 + b.Upper1e6) / 2
}

// PositionKey identifies a position receipt: one pool (implicit, the
// owning Pool), one owner, one band index, one nonce.
type PositionKey struct {
	Owner     Address
	BandIndex uint16
	Nonce     uint64
}

// Position is a liquidity-provider receipt.
type Position struct {
	Owner     Address
	BandIndex uint16
	Shares    uint64

	CheckpointFeeGrowthA1e18 *uint256.Int
	CheckpointFeeGrowthB1e18 *uint256.Int

	Nonce         uint64
	MinUnlockSlot uint64
	Approved      Address
}

// ---------------------------------------------------------------------
// Order book
// ---------------------------------------------------------------------

// PriceLevel is one band's resting-order queue on one side of the book.
// Head/Tail are FIFO cursors over logical queue position; per DESIGN.md
// note (d) they track aggregate quantity only — the event ring is the
// source of truth for individual order identity.
type PriceLevel struct {
	Head     uint64
	Tail     uint64
	TotalQty uint64
}

// BookEvent is one entry in the order book's fixed-capacity event ring.
type BookEvent struct {
	Kind       BookEventKind
	OrderID    uint64
	Side       Side
	Band       uint16
	Qty        uint64
	Price1e6   uint64
	ExpirySlot uint64
	Reason     uint8
}

// OrderBook is the CLOB layered over the band grid: level i corresponds to
// band i, priced at that band's midpoint.
type OrderBook struct {
	Tick1e6 uint64

	Bids []PriceLevel
	Asks []PriceLevel

	NextOrderID uint64

	BestBidBand int32 // -1 == empty
	BestAskBand int32 // -1 == empty

	Events     []BookEvent
	eventsHead int // ring write cursor

	MaxLevels        uint16
	MaxQueuePerLevel uint16
}

// ---------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------

// MetricsSample is one digest observation.
type MetricsSample struct {
	Slot        uint64
	Center      uint64
	Width       uint32
	TotalWeight uint32
	Hash        [32]byte
}

// MetricsRing is a fixed-capacity (MetricsCap) ring of digest samples.
type MetricsRing struct {
	samples [MetricsCap]MetricsSample
	head    int
	count   int
}

// Append records a new sample, overwriting the oldest once the ring is full.
func (m *MetricsRing) Append(s MetricsSample) {
	m.samples[m.head] = s
	m.head = (m.head + 1) % MetricsCap
	if m.count < MetricsCap {
		m.count++
	}
}

// Len returns the number of live samples.
func (m *MetricsRing) Len() int { return m.count }

// At returns the i-th most recent sample (0 = newest).
func (m *MetricsRing) At(i int) (MetricsSample, bool) {
	if i < 0 || i >= m.count {
		return MetricsSample{}, false
	}
	idx := (m.head - 1 - i + MetricsCap) % MetricsCap
	return m.samples[idx], true
}

// ---------------------------------------------------------------------
// Governance
// ---------------------------------------------------------------------

// SettableParams carries optional-field updates for a governance proposal;
// a nil field means "leave unchanged" (Anchor's Option<T> equivalent).
type SettableParams struct {
	NBands *uint8

	BaseWidthBps      *uint32
	MinWidthBps       *uint32
	MaxWidthBps       *uint32
	WidthSlopePerKbps *uint32
	BiasPerKbps       *uint32
	DecayPerBandBps   *uint32

	MaxCenterMoveBps  *uint32
	MaxWidthChangeBps *uint32
	MaxWeightShiftBps *uint32

	MinUpdateIntervalSlots *uint64

	HystCenterBps *uint32
	HystWidthBps  *uint32
	HystRequiredN *uint8

	AlphaYBps    *uint32
	AlphaSpotBps *uint32
	AlphaTwapBps *uint32
	AlphaVolBps  *uint32

	MaxTwapDevBps *uint32

	FeeBaseBps *uint32
	FeeKPerBps *uint32
	FeeMaxBps  *uint32

	MakerRebateMaxBps *uint32
	TakerMinBps       *uint32
	StpMode           *StpMode
	RouteMode         *RouteMode

	DepositRatioMinBps *uint32
	DepositRatioMaxBps *uint32

	InactiveFloorA *uint64
	InactiveFloorB *uint64

	BountyRateMicrounits *uint64
	BountyMax            *uint64
	StaleSlotsForBoost   *uint64
	BountyBoostBps       *uint32

	MinCuPrice *uint64
}

// GovernanceProposal is a queued, timelocked parameter change.
type GovernanceProposal struct {
	Params       SettableParams
	QueuedAt     uint64
	EarliestExec uint64
	Deadline     uint64
	Executed     bool
}

// ---------------------------------------------------------------------
// Pool — the root aggregate.
// ---------------------------------------------------------------------

// InitParams configures a new pool (spec.md §3/§4.2 — the Anchor
// program's InitParamsV3 equivalent).
type InitParams struct {
	AdminThreshold uint8
	Admins         [MaxAdmins]Address
	RiskAdmin      Address
	OpsAdmin       Address
	FeeAdmin       Address

	MintA, MintB         Address
	VaultA, VaultB       Address
	TreasuryA, TreasuryB Address
	Bump                 uint8

	Updater      Address
	OracleSigner Address

	NBands            uint8
	BaseWidthBps      uint32
	MinWidthBps       uint32
	MaxWidthBps       uint32
	WidthSlopePerKbps uint32
	BiasPerKbps       uint32
	DecayPerBandBps   uint32

	MaxCenterMoveBps       uint32
	MaxWidthChangeBps      uint32
	MaxWeightShiftBps      uint32
	MinUpdateIntervalSlots uint64

	HystCenterBps uint32
	HystWidthBps  uint32
	HystRequiredN uint8

	InitialYABps        uint32
	InitialYBBps        uint32
	InitialSpotPrice1e6 uint64

	AlphaYBps    uint32
	AlphaSpotBps uint32
	AlphaTwapBps uint32
	AlphaVolBps  uint32

	MaxTwapDevBps uint32

	FeeBaseBps uint32
	FeeKPerBps uint32
	FeeMaxBps  uint32

	MakerRebateMaxBps uint32
	TakerMinBps       uint32
	StpMode           StpMode
	RouteMode         RouteMode

	DepositRatioMinBps uint32
	DepositRatioMaxBps uint32

	InactiveFloorA uint64
	InactiveFloorB uint64

	BountyRateMicrounits uint64
	BountyMax            uint64
	StaleSlotsForBoost   uint64
	BountyBoostBps       uint32
	MinCuPrice           uint64
}

// Pool is the root aggregate: one per asset pair.
type Pool struct {
	Version uint8
	Bump    uint8

	AdminThreshold uint8
	Admins         [MaxAdmins]Address
	RiskAdmin      Address
	OpsAdmin       Address
	FeeAdmin       Address

	MintA, MintB         Address
	VaultA, VaultB       Address
	TreasuryA, TreasuryB Address

	Updater      Address
	OracleSigner Address

	Bands  []Band
	NBands uint8

	BaseWidthBps      uint32
	MinWidthBps       uint32
	MaxWidthBps       uint32
	WidthSlopePerKbps uint32
	BiasPerKbps       uint32
	DecayPerBandBps   uint32

	MaxCenterMoveBps       uint32
	MaxWidthChangeBps      uint32
	MaxWeightShiftBps      uint32
	MinUpdateIntervalSlots uint64
	LastUpdateSlot         uint64

	HystCenterBps uint32
	HystWidthBps  uint32
	HystRequiredN uint8
	HystCtrCenter uint8
	HystCtrWidth  uint8

	YABps        uint32
	YBBps        uint32
	SpotPrice1e6 uint64

	EmaYABps      uint32
	EmaYBBps      uint32
	EmaSpot1e6    uint64
	TwapCenter1e6 uint64

	AlphaYBps    uint32
	AlphaSpotBps uint32
	AlphaTwapBps uint32
	AlphaVolBps  uint32

	MaxTwapDevBps uint32
	VolEmaBps     uint16

	FeeBaseBps    uint32
	FeeKPerBps    uint32
	FeeMaxBps     uint32
	FeeCurrentBps uint32

	MakerRebateMaxBps uint32
	TakerMinBps       uint32
	StpMode           StpMode
	RouteMode         RouteMode

	DepositRatioMinBps uint32
	DepositRatioMaxBps uint32

	InactiveFloorA uint64
	InactiveFloorB uint64

	BountyRateMicrounits uint64
	BountyMax            uint64
	StaleSlotsForBoost   uint64
	BountyBoostBps       uint32
	NeedsUpdate          bool
	MinCuPrice           uint64

	IsPaused          bool
	PauseBands        bool
	PauseDeposits     bool
	PauseWithdraws    bool
	PauseOrderbook    bool
	PostOnlyUntilSlot uint64

	LastWidthBps       uint32
	LastCenterPrice1e6 uint64
	TotalWeightBps     uint32

	Pending *GovernanceProposal

	PendingMintRotation *MintRotationProposal

	Positions map[PositionKey]*Position

	Book *OrderBook

	Metrics MetricsRing
}

// MintRotationProposal carries an optional replacement for each mint
// identity (spec.md §4.6 "Mint rotation"); a nil field leaves that mint
// unchanged on accept.
type MintRotationProposal struct {
	NewMintA *Address
	NewMintB *Address
}
