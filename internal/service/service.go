// Package service orchestrates one facts request: provider lookup, cache
// freshness check, normalization, and best-effort cache write-back.
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/edgar-facts/internal/cache"
	"github.com/sells-group/edgar-facts/internal/facts"
)

// Query carries the per-request normalization knobs.
type Query struct {
	// Granularity filters periods: "annual", "quarterly", or "" for all.
	Granularity string
	// Limit caps accepted records per concept; 0 means no cap.
	Limit int
}

// Options tunes the service.
type Options struct {
	// AlwaysRecompute disables the cache-hit short-circuit while keeping
	// the store write, so the cache stays inspectable without being served.
	AlwaysRecompute bool
	// AllowList overrides the extracted tag set; nil uses the default.
	AllowList []string
	// SampleTags overrides the freshness sample; nil uses the default.
	SampleTags []string
}

// Service resolves identifiers to normalized company facts.
type Service struct {
	provider facts.Provider
	store    cache.Store
	opts     Options
}

// New creates a Service. A nil store disables caching.
func New(provider facts.Provider, store cache.Store, opts Options) *Service {
	if store == nil {
		store = cache.Disabled()
	}
	return &Service{provider: provider, store: store, opts: opts}
}

// GetCompanyFacts retrieves and normalizes disclosure facts for a ticker or
// CIK. Cache failures degrade to recomputation and never propagate; provider
// failures surface as facts.ErrNotFound or facts.ErrUnavailable.
func (s *Service) GetCompanyFacts(ctx context.Context, identifier string, q Query) (*facts.CompanyFactsResponse, error) {
	log := zap.L().With(zap.String("identifier", identifier))

	company, err := s.provider.Lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	// A company disclosing nothing across the allow-list is indistinguishable
	// from an unknown one to consumers of the normalized tables.
	if !hasAllowListedFacts(company, s.opts.AllowList) {
		return nil, facts.ErrNotFound
	}

	identifierType := "ticker"
	tickerKey := strings.ToUpper(strings.TrimSpace(identifier))
	if facts.IsCIK(identifier) {
		// Only ticker lookups are cache-keyed; CIK requests always recompute.
		identifierType = "cik"
		tickerKey = ""
	}

	freshDate := facts.MostRecentFilingDate(company, s.opts.SampleTags)

	var cached *cache.Entry
	if tickerKey != "" {
		cached, err = s.store.Get(ctx, tickerKey)
		if err != nil {
			log.Warn("cache read failed, treating as absent", zap.Error(err))
			cached = nil
		}
	}

	if cached != nil && !s.opts.AlwaysRecompute &&
		facts.CacheAuthoritative(&cached.FilingDate, freshDate) {
		if usable(&cached.Facts) {
			log.Info("serving cached facts",
				zap.Time("cached_filing_date", cached.FilingDate))
			resp := cached.Facts
			return &resp, nil
		}
		log.Warn("cached facts malformed, recomputing")
	}

	n := &facts.Normalizer{
		Granularity:     q.Granularity,
		PerConceptLimit: q.Limit,
		AllowList:       s.opts.AllowList,
	}
	resp, conflicts := n.Normalize(company)
	resp.IdentifierType = identifierType

	for _, c := range conflicts {
		log.Warn("conflicting disclosure values",
			zap.String("period", c.PeriodID),
			zap.String("tag", c.Tag),
			zap.String("kept", c.Kept),
			zap.String("rejected", c.Rejected),
		)
	}

	// Store is best-effort and ticker-keyed; without a discoverable filing
	// date the entry could never be judged fresh, so it is not written.
	if tickerKey != "" && freshDate != nil {
		entry := cache.Entry{Ticker: tickerKey, FilingDate: *freshDate, Facts: *resp}
		if err := s.store.Put(ctx, entry); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		} else {
			log.Info("stored facts in cache", zap.Time("filing_date", *freshDate))
		}
	}

	return resp, nil
}

// hasAllowListedFacts reports whether the company discloses at least one
// record under any consulted tag. A nil allow-list uses the default.
func hasAllowListedFacts(c facts.Company, allowList []string) bool {
	if allowList == nil {
		allowList = facts.DefaultAllowList
	}
	for _, tag := range allowList {
		if len(c.FactsByConcept(tag)) > 0 {
			return true
		}
	}
	return false
}

// usable guards against malformed cached payloads (missing expected fields).
func usable(r *facts.CompanyFactsResponse) bool {
	return r.Company.CIK != "" && r.Concepts != nil && r.Periods != nil
}
