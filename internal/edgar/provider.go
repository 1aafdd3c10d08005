package edgar

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/edgar-facts/internal/facts"
	"github.com/sells-group/edgar-facts/internal/fetcher"
)

// namespaces lists the fact namespaces consulted, in priority order.
var namespaces = []string{"us-gaap", "dei"}

// Provider implements facts.Provider against SEC EDGAR.
type Provider struct {
	client *Client
}

// NewProvider creates the EDGAR-backed filing data provider.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Lookup resolves a ticker or numeric CIK to a company handle holding its
// parsed facts. Returns facts.ErrNotFound when the identifier does not
// resolve or the company has no disclosed facts, facts.ErrUnavailable for
// any other provider failure.
func (p *Provider) Lookup(ctx context.Context, identifier string) (facts.Company, error) {
	identifier = strings.TrimSpace(identifier)

	var cik, ticker string
	if facts.IsCIK(identifier) {
		cik = facts.NormalizeCIK(identifier)
	} else {
		ticker = strings.ToUpper(identifier)
		resolved, err := p.client.CIKForTicker(ctx, ticker)
		if err != nil {
			if errors.Is(err, facts.ErrNotFound) {
				return nil, facts.ErrNotFound
			}
			zap.L().Warn("ticker resolution failed", zap.String("ticker", ticker), zap.Error(err))
			return nil, facts.ErrUnavailable
		}
		cik = resolved
	}

	doc, err := p.client.FetchCompanyFacts(ctx, cik)
	if err != nil {
		if errors.Is(err, fetcher.ErrNotFound) {
			return nil, facts.ErrNotFound
		}
		zap.L().Warn("company facts fetch failed", zap.String("cik", cik), zap.Error(err))
		return nil, facts.ErrUnavailable
	}

	h := newHandle(doc, cik, ticker)
	if len(h.byTag) == 0 {
		return nil, facts.ErrNotFound
	}
	return h, nil
}

// companyHandle holds one company's parsed facts for the duration of a
// request. FactsByConcept serves from memory; no further network access.
type companyHandle struct {
	info  facts.CompanyInfo
	byTag map[string][]facts.RawFact
}

func newHandle(doc *CompanyFacts, cik, ticker string) *companyHandle {
	h := &companyHandle{
		info: facts.CompanyInfo{
			Name:   doc.EntityName,
			CIK:    cik,
			Ticker: ticker,
		},
		byTag: make(map[string][]facts.RawFact),
	}

	for _, ns := range namespaces {
		nsMap, ok := doc.Facts[ns]
		if !ok {
			continue
		}
		for name, detail := range nsMap {
			tag := ns + ":" + name
			for unit, values := range detail.Units {
				for _, v := range values {
					rec, ok := toRawFact(tag, unit, detail.Label, v)
					if !ok {
						continue
					}
					h.byTag[tag] = append(h.byTag[tag], rec)
				}
			}
		}
	}

	// Most-recent-period-first per tag.
	for tag := range h.byTag {
		recs := h.byTag[tag]
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].PeriodEnd.After(recs[j].PeriodEnd)
		})
	}

	return h
}

func (h *companyHandle) Info() facts.CompanyInfo { return h.info }

func (h *companyHandle) FactsByConcept(tag string) []facts.RawFact {
	return h.byTag[tag]
}

// toRawFact converts one EDGAR value entry at the interface boundary.
// Malformed entries are dropped with a diagnostic; they never abort the rest
// of the document.
func toRawFact(tag, unit, label string, v FactValue) (facts.RawFact, bool) {
	if v.End == "" {
		return facts.RawFact{}, false
	}
	end, err := time.Parse("2006-01-02", v.End)
	if err != nil {
		zap.L().Debug("skip record with malformed period end",
			zap.String("tag", tag), zap.String("end", v.End))
		return facts.RawFact{}, false
	}

	rec := facts.RawFact{
		Tag:          tag,
		PeriodEnd:    end,
		FiscalPeriod: strings.ToUpper(v.FP),
		Accession:    v.Accn,
		Unit:         unit,
		Label:        label,
	}

	if v.Start != "" {
		if start, err := time.Parse("2006-01-02", v.Start); err == nil {
			rec.PeriodStart = start
		}
	}
	if v.Filed != "" {
		if filed, err := time.Parse("2006-01-02", v.Filed); err == nil {
			rec.FilingDate = &filed
		}
	}

	switch val := v.Val.(type) {
	case float64:
		rec.NumericValue = &val
	case nil:
		// left nil; the normalizer's completeness filter drops it
	default:
		zap.L().Debug("skip non-numeric fact value", zap.String("tag", tag))
	}

	return rec, true
}
