// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"github.com/zeebo/blake3"
)

// Address is a host-neutral 32-byte identity. It is never interpreted by
// the core beyond byte-equality: a host adapter is free to store an EVM
// address zero-padded into the low 20 bytes, a Solana pubkey, or any other
// 32-byte identity scheme.
type Address [32]byte

// ZeroAddress is the sentinel "unset" identity.
var ZeroAddress = Address{}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Custody is the external collaborator responsible for moving tokens
// between accounts and vaults. The pool never custodies tokens itself; it
// only directs a Custody implementation, mirroring how pool_manager.go's
// StateDB stands in for the EVM state trie.
type Custody interface {
	// TransferIn moves amount of asset from `from` into `vault`.
	TransferIn(asset, from, vault Address, amount uint64) error
	// TransferOut moves amount of asset from `vault` to `to`.
	TransferOut(asset, vault, to Address, amount uint64) error
	// Balance returns the current balance of asset held at account.
	Balance(asset, account Address) (uint64, error)
}

// SignerSet is the set of identities that co-signed the current call,
// used for oracle-signer and multisig-admin authorization checks.
type SignerSet interface {
	HasSigner(id Address) bool
}

// staticSigners is a trivial SignerSet over a fixed slice, convenient for
// tests and simple host adapters.
type staticSigners []Address

// NewSignerSet builds a SignerSet from a fixed list of co-signer identities.
func NewSignerSet(ids ...Address) SignerSet {
	return staticSigners(ids)
}

func (s staticSigners) HasSigner(id Address) bool {
	for _, have := range s {
		if have == id {
			return true
		}
	}
	return false
}

// DeriveVaultAuthority derives the deterministic signing handle a host
// adapter must use to authorize transfers out of the pool's vaults, from
// the seed tuple {"v3","pool",mint_a,mint_b,bump} (spec §5, §9). Using
// BLAKE3 continues pool_manager.go's makeStorageKey/PositionKey pattern of
// hashing a domain-separated seed tuple into a fixed-width identifier.
func DeriveVaultAuthority(mintA, mintB Address, bump uint8) Address {
	h := blake3.New()
	h.Write([]byte("v3"))
	h.Write([]byte("pool"))
	h.Write(mintA[:])
	h.Write(mintB[:])
	h.Write([]byte{bump})
	var out Address
	h.Digest().Read(out[:])
	return out
}
