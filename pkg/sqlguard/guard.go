// Package sqlguard screens request-supplied identifiers before they are
// interpolated into catalog and aggregate queries. Identifiers are also
// quoted by the adapters; the screen catches hostile input early and
// gives it a uniform rejection.
package sqlguard

import (
	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
)

// CheckResult contains the result of an injection check on an identifier.
type CheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Name        string // The identifier that was checked
}

// CheckIdentifier validates a table or column name supplied by a client.
// kind names the identifier's role ("table", "column") for the error
// description. Returns nil when the name is clean.
func CheckIdentifier(kind, name string) error {
	if name == "" {
		return apperrors.InvalidIdentifier(kind, name)
	}

	if isSQLi, _ := libinjection.IsSQLi(name); isSQLi {
		return apperrors.InvalidIdentifier(kind, name)
	}

	return nil
}

// Inspect runs the injection check and reports its details. Useful for
// logging rejected identifiers with their fingerprint.
func Inspect(name string) *CheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(name)
	if !isSQLi {
		return nil
	}
	return &CheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		Name:        name,
	}
}
