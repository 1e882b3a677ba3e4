package apperrors

import (
	"errors"
	"strings"
	"testing"
)

func TestConnectionFailedSanitizesDescriptor(t *testing.T) {
	err := ConnectionFailed("postgres://bob:hunter2@db:5432/sales", errors.New("dial tcp: timeout"))

	if !errors.Is(err, ErrConnection) {
		t.Fatal("expected ErrConnection")
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("description leaks password: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "could not connect") {
		t.Errorf("unexpected description: %q", err.Error())
	}
}

func TestTableNotFound(t *testing.T) {
	err := TableNotFound("buildings", "postgres://db:5432/sales")

	if !errors.Is(err, ErrTableNotFound) {
		t.Fatal("expected ErrTableNotFound")
	}
	if !strings.Contains(err.Error(), "buildings") {
		t.Errorf("description should name the table: %q", err.Error())
	}
}

func TestIsComparisonError(t *testing.T) {
	for _, err := range []error{
		ConnectionFailed("x", errors.New("boom")),
		TableNotFound("t", "x"),
		InvalidColumn("c", "t"),
		InvalidIdentifier("table", "t; DROP TABLE x"),
		QueryFailed("t", errors.New("boom")),
	} {
		if !IsComparisonError(err) {
			t.Errorf("expected %v to be a comparison error", err)
		}
	}

	if IsComparisonError(errors.New("unrelated")) {
		t.Error("unrelated error misclassified")
	}
	if IsComparisonError(nil) {
		t.Error("nil misclassified")
	}
}
