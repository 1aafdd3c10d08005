// Package facts normalizes raw EDGAR disclosure records into a deduplicated
// concept/period/fact model and decides when a cached result is still fresh.
package facts

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawFact is one disclosed numeric value for one concept tag, as delivered by
// the filing data provider. It only lives for the duration of one
// normalization pass.
type RawFact struct {
	Tag          string     // namespaced, e.g. "us-gaap:Assets"
	NumericValue *float64   // nil when the provider reported a non-numeric value
	PeriodStart  time.Time  // zero when not reported
	PeriodEnd    time.Time  // zero when not reported
	FiscalPeriod string     // "Q1".."Q4", "FY", or empty
	Accession    string     // SEC accession number, optional
	FilingDate   *time.Time // optional
	Unit         string     // optional, e.g. "USD"
	Label        string     // optional human-readable label
}

// Concept is a deduplicated description of a reporting tag. At most one
// Concept per tag appears in a response.
type Concept struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
	Unit  string `json:"unit,omitempty"`
}

// Fact is one concept's value attached to one period.
type Fact struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// Period is a deduplicated reporting interval. Exactly one Period per
// generated id appears in a response; Facts within it carry pairwise-distinct
// concept tags.
type Period struct {
	ID         string `json:"id"` // "<FiscalCode> <Year>", e.g. "Q1 2024"
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date"`
	PeriodType string `json:"period_type"` // "annual" or "quarterly"
	Accession  string `json:"accn,omitempty"`
	FiledAt    string `json:"filed_at,omitempty"`
	Facts      []Fact `json:"facts"`
}

// CompanyInfo identifies the reporting company.
type CompanyInfo struct {
	Name   string `json:"name"`
	CIK    string `json:"cik"` // 10-digit zero-padded
	Ticker string `json:"ticker,omitempty"`
}

// CompanyFactsResponse is the normalized three-table result. It is the unit
// stored in and retrieved from the cache.
type CompanyFactsResponse struct {
	Company        CompanyInfo `json:"company"`
	IdentifierType string      `json:"identifier_type"` // "ticker" or "cik"
	Concepts       []Concept   `json:"concepts"`
	Periods        []Period    `json:"periods"`
}

// dateLayout is the wire format for period and filing dates.
const dateLayout = "2006-01-02"

// PeriodID generates the composite period identifier from a fiscal-period
// code and the period-end date, e.g. ("Q1", 2024-03-31) -> "Q1 2024".
// An unknown or empty fiscal code yields "UNKNOWN <year>".
func PeriodID(fiscalCode string, end time.Time) string {
	code := strings.ToUpper(strings.TrimSpace(fiscalCode))
	switch code {
	case "Q1", "Q2", "Q3", "Q4", "FY":
	default:
		code = "UNKNOWN"
	}
	return fmt.Sprintf("%s %d", code, end.Year())
}

// PeriodType classifies a fiscal code as "annual" (FY) or "quarterly".
func PeriodType(fiscalCode string) string {
	if strings.EqualFold(strings.TrimSpace(fiscalCode), "FY") {
		return "annual"
	}
	return "quarterly"
}

// LocalName returns the tag's local name, the text after the namespace
// separator. "us-gaap:NetIncomeLoss" -> "NetIncomeLoss".
func LocalName(tag string) string {
	if i := strings.LastIndex(tag, ":"); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// FormatValue renders a numeric fact value in its canonical string form.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NormalizeCIK zero-pads a numeric company identifier to the fixed 10-digit
// form EDGAR uses. Non-numeric input is returned unchanged.
func NormalizeCIK(cik string) string {
	if _, err := strconv.Atoi(strings.TrimSpace(cik)); err != nil {
		return cik
	}
	return fmt.Sprintf("%010s", strings.TrimLeft(strings.TrimSpace(cik), "0"))
}

// IsCIK reports whether the identifier looks like a numeric CIK rather than
// a ticker symbol.
func IsCIK(identifier string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(identifier))
	return err == nil
}
