package services

import (
	"fmt"
	"math"
	"strconv"
)

// InstantBust is the minimum crash point, in hundredths (1.00x). Every bet
// requires a multiplier strictly above 1.00x, so an instant-bust round pays
// nobody; it occurs with probability 1/modulus and encodes the house edge.
const InstantBust = 100

// EdgeModulus derives the instant-bust modulus from the house-edge fraction
// (0.05 -> 20).
func EdgeModulus(edge float64) int64 {
	return int64(math.Round(1 / edge))
}

// ComputeOutcome maps a combined round hash to a crash point in hundredths.
// The derivation is the publicly auditable fairness contract:
//
//  1. Fold the hash mod modulus over 16-bit chunks, boundaries aligned to the
//     tail, leading partial chunk first. A zero fold is an instant bust.
//  2. Otherwise take the leading 13 hex digits as a 52-bit integer h and
//     return floor((100*e - h) / (e - h)) with e = 2^52.
func ComputeOutcome(combinedHash string, modulus int64) (int64, error) {
	if len(combinedHash) < 13 {
		return 0, fmt.Errorf("combined hash too short: %d hex digits", len(combinedHash))
	}
	if modulus <= 0 {
		return 0, fmt.Errorf("invalid modulus %d", modulus)
	}

	bust, err := hashDivisible(combinedHash, modulus)
	if err != nil {
		return 0, err
	}
	if bust {
		return InstantBust, nil
	}

	h, err := strconv.ParseUint(combinedHash[:13], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid combined hash: %v", err)
	}
	e := uint64(1) << 52
	return int64((100*e - h) / (e - h)), nil
}

// hashDivisible reports whether the hash, read as a big hex integer, is
// divisible by mod. Chunked so arbitrary-length hashes never overflow.
func hashDivisible(hash string, mod int64) (bool, error) {
	acc := int64(0)
	first := len(hash) % 4
	if first > 0 {
		chunk, err := strconv.ParseInt(hash[:first], 16, 64)
		if err != nil {
			return false, fmt.Errorf("invalid combined hash: %v", err)
		}
		acc = chunk % mod
	}
	for i := first; i < len(hash); i += 4 {
		chunk, err := strconv.ParseInt(hash[i:i+4], 16, 64)
		if err != nil {
			return false, fmt.Errorf("invalid combined hash: %v", err)
		}
		acc = (acc<<16 + chunk) % mod
	}
	return acc == 0, nil
}
