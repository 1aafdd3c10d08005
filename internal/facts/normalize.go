package facts

import (
	"strings"
	"time"
)

// quarterSpan is the longest period a FY-coded record may cover and still be
// admitted by the quarterly granularity filter. Some filers tag quarter-length
// periods with an annual fiscal code.
const quarterSpan = 92 * 24 * time.Hour

// Conflict records a genuine value disagreement for one (period, concept)
// pair. The first-seen value is kept; the later one is reported, never
// applied.
type Conflict struct {
	PeriodID string
	Tag      string
	Kept     string
	Rejected string
}

// Normalizer maps raw per-concept fact records into the deduplicated
// concept/period/fact tables.
type Normalizer struct {
	// Granularity filters records by period type: "annual", "quarterly",
	// or empty for no filter.
	Granularity string
	// PerConceptLimit caps accepted records per tag; 0 means no cap.
	PerConceptLimit int
	// AllowList is the set of tags to extract; nil uses DefaultAllowList.
	AllowList []string
}

// Normalize builds the normalized tables for one company. Conflicting
// re-disclosures are returned as diagnostics, exactly one per differing
// (period, tag) pair; they never fail the pass.
func (n *Normalizer) Normalize(c Company) (*CompanyFactsResponse, []Conflict) {
	allowList := n.AllowList
	if allowList == nil {
		allowList = DefaultAllowList
	}

	resp := &CompanyFactsResponse{
		Company:  c.Info(),
		Concepts: []Concept{},
		Periods:  []Period{},
	}

	var conflicts []Conflict
	// periodIndex maps period id -> index into resp.Periods; slots holds the
	// kept value per (period id, tag) pair; conflicted marks pairs already
	// reported so each differing pair is diagnosed exactly once.
	periodIndex := make(map[string]int)
	slots := make(map[[2]string]string)
	conflicted := make(map[[2]string]struct{})

	for _, tag := range allowList {
		records := c.FactsByConcept(tag)
		if len(records) == 0 {
			continue
		}

		concept := Concept{
			Tag:   tag,
			Label: records[0].Label,
			Unit:  records[0].Unit,
		}
		if concept.Label == "" {
			concept.Label = LocalName(tag)
		}

		accepted := 0
		conceptUsed := false

		for _, rec := range records {
			if n.PerConceptLimit > 0 && accepted >= n.PerConceptLimit {
				break
			}
			if !n.granularityMatch(rec) {
				continue
			}
			if rec.NumericValue == nil || rec.PeriodEnd.IsZero() {
				continue
			}
			accepted++
			conceptUsed = true

			pid := PeriodID(rec.FiscalPeriod, rec.PeriodEnd)
			idx, ok := periodIndex[pid]
			if !ok {
				p := Period{
					ID:         pid,
					EndDate:    rec.PeriodEnd.Format(dateLayout),
					PeriodType: PeriodType(rec.FiscalPeriod),
					Accession:  rec.Accession,
				}
				if !rec.PeriodStart.IsZero() {
					p.StartDate = rec.PeriodStart.Format(dateLayout)
				}
				if rec.FilingDate != nil {
					p.FiledAt = rec.FilingDate.Format(dateLayout)
				}
				resp.Periods = append(resp.Periods, p)
				idx = len(resp.Periods) - 1
				periodIndex[pid] = idx
			}

			value := FormatValue(*rec.NumericValue)
			key := [2]string{pid, tag}
			kept, seen := slots[key]
			if !seen {
				slots[key] = value
				resp.Periods[idx].Facts = append(resp.Periods[idx].Facts, Fact{Tag: tag, Value: value})
				continue
			}
			if kept == value {
				continue // repeated disclosure of the same figure
			}
			if _, done := conflicted[key]; !done {
				conflicted[key] = struct{}{}
				conflicts = append(conflicts, Conflict{
					PeriodID: pid,
					Tag:      tag,
					Kept:     kept,
					Rejected: value,
				})
			}
		}

		if conceptUsed {
			resp.Concepts = append(resp.Concepts, concept)
		}
	}

	return resp, conflicts
}

// granularityMatch applies the period-type filter. Quarterly admits Q1-Q4
// and FY-coded records whose span is at most a quarter; some filers tag
// quarter-length periods with an annual fiscal code.
func (n *Normalizer) granularityMatch(rec RawFact) bool {
	code := strings.ToUpper(strings.TrimSpace(rec.FiscalPeriod))
	switch n.Granularity {
	case "annual":
		return code == "FY"
	case "quarterly":
		switch code {
		case "Q1", "Q2", "Q3", "Q4":
			return true
		case "FY":
			if rec.PeriodStart.IsZero() || rec.PeriodEnd.IsZero() {
				return false
			}
			return rec.PeriodEnd.Sub(rec.PeriodStart) <= quarterSpan
		default:
			return false
		}
	default:
		return true
	}
}
