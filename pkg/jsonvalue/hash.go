// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

const (
	hashNull   uint64 = 31
	hashTrue   uint64 = 1231
	hashFalse  uint64 = 1237
	hashArray  uint64 = 3
	hashObject uint64 = 7
	hashPrime  uint64 = 31
)

// Hash returns a hash consistent with Equal.
//
// Arrays fold element hashes in order. Objects XOR the hashes of their
// key/value pairs, so field order never matters while content does.
func (v Value) Hash() uint64 {
	switch v.kind {
	case KindBool:
		if v.b {
			return hashTrue
		}
		return hashFalse
	case KindNumber:
		n := v.n
		if n == 0 {
			// -0 == 0
			n = 0
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(n))
		return xxhash.Sum64(buf[:])
	case KindString:
		return xxhash.Sum64String(v.s)
	case KindArray:
		h := hashArray
		for _, e := range v.array {
			h = (h * hashPrime) ^ e.Hash()
		}
		return h
	case KindObject:
		h := hashObject
		for k, e := range v.object {
			h ^= xxhash.Sum64String(k)*hashPrime + e.Hash()
		}
		return h
	default:
		return hashNull
	}
}
