// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

// Every event carries event_version = 3 (spec.md §6). Event transport
// (wire codec, persistence) is an external concern; these are plain
// structs a host adapter forwards however it likes.

type PoolInitialized struct {
	EventVersion uint8
	MintA, MintB Address
	NBands       uint8
}

type PoolMigrated struct {
	EventVersion   uint8
	FromVersion    uint8
	ToVersion      uint8
}

type BandsDigestUpdated struct {
	EventVersion uint8
	Width        uint32
	Center       uint64
	TotalWeight  uint32
	Digest       [32]byte
	Slot         uint64
	FeeCurrent   uint32
	VolEma       uint16
}

type LiquidityAdded struct {
	EventVersion uint8
	Owner        Address
	BandIndex    uint16
	AmountA      uint64
	AmountB      uint64
	SharesMinted uint64
}

type LiquidityRemoved struct {
	EventVersion uint8
	Owner        Address
	BandIndex    uint16
	AmountA      uint64
	AmountB      uint64
	SharesBurned uint64
	Closed       bool
}

type FeesCollected struct {
	EventVersion uint8
	Owner        Address
	BandIndex    uint16
	AmountA      uint64
	AmountB      uint64
}

type OrderPlaced struct {
	EventVersion uint8
	OrderID      uint64
	Side         Side
	Band         uint16
	Qty          uint64
	Price1e6     uint64
	ExpirySlot   uint64
}

type OrderFilledV3 struct {
	EventVersion  uint8
	Band          uint16
	Side          Side
	Qty           uint64
	Price1e6      uint64
	TakerFeeBps   uint32
	MakerRebateBps uint32
}

type OrderCanceled struct {
	EventVersion uint8
	OrderID      uint64
	Side         Side
	Band         uint16
	Reason       uint8
}

type SwapFilledV struct {
	EventVersion uint8
	Band         uint16
	Side         Side
	Qty          uint64
	FeeBps       uint32
}

type DepthLevel struct {
	Band  uint16
	Price uint64
	Qty   uint64
}

type DepthSnapshot struct {
	EventVersion uint8
	Bids         []DepthLevel
	Asks         []DepthLevel
}

type ParamsProposed struct {
	EventVersion uint8
	EarliestExec uint64
	Deadline     uint64
}

type ParamsExecuted struct {
	EventVersion uint8
}

type EmergencyDrain struct {
	EventVersion uint8
	FromA        bool
	Amount       uint64
	To           Address
}
