package participant

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	if err := ValidateName("alice"); err != nil {
		t.Fatalf("plain name rejected: %v", err)
	}
	if err := ValidateName("   "); err == nil {
		t.Fatalf("blank name accepted")
	}
	if err := ValidateName(strings.Repeat("a", 21)); err == nil {
		t.Fatalf("21-character name accepted")
	}
}

func TestValidateNameCountsCharacters(t *testing.T) {
	// Multibyte names are measured in characters, not bytes.
	if err := ValidateName(strings.Repeat("ü", 20)); err != nil {
		t.Fatalf("20-character multibyte name rejected: %v", err)
	}
	if err := ValidateName(strings.Repeat("ü", 21)); err == nil {
		t.Fatalf("21-character multibyte name accepted")
	}
}

func TestAllowance(t *testing.T) {
	p := Participant{BonusClaims: 2}
	if got := p.Allowance(0); got != 0 {
		t.Fatalf("unlimited quota: want 0, got %d", got)
	}
	if got := p.Allowance(5); got != 7 {
		t.Fatalf("base plus bonus: want 7, got %d", got)
	}
}
