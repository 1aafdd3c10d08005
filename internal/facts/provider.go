package facts

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrNotFound indicates the identifier does not resolve to a known company,
// or the resolved company has no disclosed facts at all.
var ErrNotFound = eris.New("facts: company not found")

// ErrUnavailable indicates the filing data provider failed for reasons other
// than "no such company" (network, rate limiting, upstream parse failure).
var ErrUnavailable = eris.New("facts: filing data provider unavailable")

// Provider resolves a company identifier to its disclosed facts. Identifier
// is either a ticker symbol (case-insensitive) or a numeric CIK.
type Provider interface {
	Lookup(ctx context.Context, identifier string) (Company, error)
}

// Company is a resolved company handle. FactsByConcept returns the raw
// records for one namespaced tag, ordered most-recent-period-first; an
// unknown tag returns an empty slice.
type Company interface {
	Info() CompanyInfo
	FactsByConcept(tag string) []RawFact
}
