package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
)

func hashOf(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func TestComputeOutcomeInstantBust(t *testing.T) {
	// Hashes whose value is divisible by 20 always bust at 100.
	divisible := []string{
		"0000000000000000000000000000000000000000000000000000000000000014", // = 20
		hashOf("seed-24"),
		hashOf("seed-34"),
		hashOf("seed-44"),
		hashOf("secret-round"),
	}
	for _, hash := range divisible {
		got, err := ComputeOutcome(hash, 20)
		if err != nil {
			t.Fatalf("ComputeOutcome(%s) error: %v", hash, err)
		}
		if got != InstantBust {
			t.Errorf("ComputeOutcome(%s) = %d, want %d", hash, got, InstantBust)
		}
	}
}

func TestComputeOutcomeCrashPoints(t *testing.T) {
	tests := []struct {
		hash string
		want int64
	}{
		{hashOf("a"), 475},        // 4.75x
		{hashOf("b"), 131},        // 1.31x
		{hashOf("c"), 121},        // 1.21x
		{hashOf("deadbeef"), 120}, // 1.20x
		// All-ones hash: h = 2^52-1, outcome = 99*2^52+1
		{"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 445856363109679105},
	}
	for _, tt := range tests {
		got, err := ComputeOutcome(tt.hash, 20)
		if err != nil {
			t.Fatalf("ComputeOutcome(%s) error: %v", tt.hash, err)
		}
		if got != tt.want {
			t.Errorf("ComputeOutcome(%s) = %d, want %d", tt.hash, got, tt.want)
		}
	}
}

func TestComputeOutcomeDeterministic(t *testing.T) {
	hash := hashOf("determinism")
	first, err := ComputeOutcome(hash, 20)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := ComputeOutcome(hash, 20)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("ComputeOutcome not deterministic: %d vs %d", first, again)
		}
	}
}

func TestComputeOutcomeMinimum(t *testing.T) {
	// Every outcome is at least the instant-bust floor: a crash point below
	// 1.00x cannot exist.
	for i := 0; i < 2000; i++ {
		hash := hashOf(fmt.Sprintf("min-%d", i))
		got, err := ComputeOutcome(hash, 20)
		if err != nil {
			t.Fatal(err)
		}
		if got < InstantBust {
			t.Fatalf("ComputeOutcome(%s) = %d, below %d", hash, got, InstantBust)
		}
	}
}

func TestInstantBustFrequency(t *testing.T) {
	// The modular-fold bust branch fires with probability 1/modulus. The
	// formula branch also lands exactly on 100 for small h, so the bust
	// branch is counted directly.
	const n = 20000
	busts := 0
	for i := 0; i < n; i++ {
		hash := hashOf(fmt.Sprintf("round-%d", i))
		bust, err := hashDivisible(hash, 20)
		if err != nil {
			t.Fatal(err)
		}
		if bust {
			busts++
		}
	}
	fraction := float64(busts) / float64(n)
	if fraction < 0.04 || fraction > 0.06 {
		t.Errorf("instant-bust fraction = %.4f, want about 1/20", fraction)
	}
}

func TestComputeOutcomeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		modulus int64
	}{
		{"too short", "abc123", 20},
		{"not hex", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", 20},
		{"zero modulus", hashOf("x"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeOutcome(tt.hash, tt.modulus); err == nil {
				t.Errorf("ComputeOutcome(%q, %d) expected error", tt.hash, tt.modulus)
			}
		})
	}
}

func TestEdgeModulus(t *testing.T) {
	tests := []struct {
		edge float64
		want int64
	}{
		{0.05, 20},
		{0.01, 100},
		{0.10, 10},
	}
	for _, tt := range tests {
		if got := EdgeModulus(tt.edge); got != tt.want {
			t.Errorf("EdgeModulus(%v) = %d, want %d", tt.edge, got, tt.want)
		}
	}
}
