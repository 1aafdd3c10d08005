// Package edgar implements the filing data provider against SEC EDGAR's
// XBRL company-facts API.
package edgar

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// CompanyFacts represents the EDGAR company facts JSON-LD structure served
// at data.sec.gov/api/xbrl/companyfacts/CIK##########.json.
type CompanyFacts struct {
	CIK        json.Number       `json:"cik"`
	EntityName string            `json:"entityName"`
	Facts      map[string]FactNS `json:"facts"`
}

// FactNS groups facts by namespace (e.g., "us-gaap", "dei").
type FactNS map[string]FactDetail

// FactDetail is a single XBRL fact with its units and values.
type FactDetail struct {
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Units       map[string][]FactValue `json:"units"`
}

// FactValue is a single data point for a fact.
type FactValue struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end"`
	Val   any    `json:"val"`
	Accn  string `json:"accn"`
	FY    int    `json:"fy"`
	FP    string `json:"fp"`
	Form  string `json:"form"`
	Filed string `json:"filed"`
	Frame string `json:"frame,omitempty"`
}

// ParseCompanyFacts parses EDGAR company facts JSON-LD from a reader.
func ParseCompanyFacts(r io.Reader) (*CompanyFacts, error) {
	var facts CompanyFacts
	if err := json.NewDecoder(r).Decode(&facts); err != nil {
		return nil, eris.Wrap(err, "edgar: parse company facts")
	}
	return &facts, nil
}
