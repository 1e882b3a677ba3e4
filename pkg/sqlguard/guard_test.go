package sqlguard

import (
	"errors"
	"testing"

	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
)

func TestCheckIdentifierAcceptsCleanNames(t *testing.T) {
	for _, name := range []string{
		"buildings",
		"owner_name",
		"Table2",
		"gross_floor_area",
	} {
		if err := CheckIdentifier("table", name); err != nil {
			t.Errorf("expected %q to pass, got %v", name, err)
		}
	}
}

func TestCheckIdentifierRejectsInjection(t *testing.T) {
	for _, name := range []string{
		"users; DROP TABLE users--",
		"t' OR '1'='1",
		"x UNION SELECT password FROM accounts",
	} {
		err := CheckIdentifier("table", name)
		if err == nil {
			t.Errorf("expected %q to be rejected", name)
			continue
		}
		if !errors.Is(err, apperrors.ErrQuery) {
			t.Errorf("expected ErrQuery for %q, got %v", name, err)
		}
	}
}

func TestCheckIdentifierRejectsEmpty(t *testing.T) {
	if err := CheckIdentifier("column", ""); err == nil {
		t.Error("expected empty identifier to be rejected")
	}
}

func TestInspect(t *testing.T) {
	if r := Inspect("buildings"); r != nil {
		t.Errorf("clean identifier flagged: %+v", r)
	}

	r := Inspect("'; DROP TABLE users--")
	if r == nil {
		t.Fatal("expected injection to be detected")
	}
	if !r.IsSQLi || r.Fingerprint == "" {
		t.Errorf("incomplete result: %+v", r)
	}
}
