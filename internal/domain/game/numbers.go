package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewAssignment returns a random permutation of the digits 0..9 using a
// Fisher-Yates shuffle driven by crypto/rand.
func NewAssignment() ([]int, error) {
	digits := make([]int, GridSize)
	for i := range digits {
		digits[i] = i
	}
	for i := len(digits) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("read random index: %w", err)
		}
		j := int(n.Int64())
		digits[i], digits[j] = digits[j], digits[i]
	}
	return digits, nil
}

// ValidAssignment reports whether digits is a permutation of exactly 0..9.
func ValidAssignment(digits []int) bool {
	if len(digits) != GridSize {
		return false
	}
	var seen [GridSize]bool
	for _, d := range digits {
		if d < 0 || d >= GridSize || seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// DigitIndex returns the 1-based grid position of digit within the
// assignment, or 0 when the digit is absent.
func DigitIndex(assignment []int, digit int) int {
	for i, d := range assignment {
		if d == digit {
			return i + 1
		}
	}
	return 0
}
