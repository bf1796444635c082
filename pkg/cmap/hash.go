package cmap

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"golang.org/x/exp/constraints"
)

// Hasher maps a key to a 64-bit hash. The table reduces it modulo the
// bucket count, so any uint64 is a valid result.
type Hasher[K any] func(key K) uint64

// Hasher names accepted by HasherByName.
const (
	HasherMaphash  = "maphash"
	HasherMurmur3  = "murmur3"
	HasherXXHash   = "xxhash"
	HasherIdentity = "identity"
)

// MapHasher returns the default hasher: maphash.Comparable with a fresh seed.
func MapHasher[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

// Murmur3String hashes string keys with 64-bit murmur3.
func Murmur3String[K ~string]() Hasher[K] {
	return func(key K) uint64 {
		return murmur3.Sum64([]byte(key))
	}
}

// Murmur3Int hashes the little-endian encoding of an integer key with murmur3.
func Murmur3Int[K constraints.Integer]() Hasher[K] {
	return func(key K) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return murmur3.Sum64(buf[:])
	}
}

// XXHashString hashes string keys with xxhash64.
func XXHashString[K ~string]() Hasher[K] {
	return func(key K) uint64 {
		return xxhash.Sum64String(string(key))
	}
}

// XXHashInt hashes the little-endian encoding of an integer key with xxhash64.
func XXHashInt[K constraints.Integer]() Hasher[K] {
	return func(key K) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return xxhash.Sum64(buf[:])
	}
}

// IdentityInt uses the integer itself as its hash.
//
// Negative keys are reinterpreted as their two's complement uint64, so
// the bucket index is still well defined.
func IdentityInt[K constraints.Integer]() Hasher[K] {
	return func(key K) uint64 {
		return uint64(key)
	}
}

// HasherByName resolves a hasher for integer keys from its configured name.
// An empty name selects maphash.
func HasherByName[K constraints.Integer](name string) (Hasher[K], error) {
	switch name {
	case "", HasherMaphash:
		return MapHasher[K](), nil
	case HasherMurmur3:
		return Murmur3Int[K](), nil
	case HasherXXHash:
		return XXHashInt[K](), nil
	case HasherIdentity:
		return IdentityInt[K](), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
}
