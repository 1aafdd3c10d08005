package facts

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultAllowList is the fixed set of US-GAAP tags consulted during
// normalization. Tags absent from a company's filings are silently skipped.
var DefaultAllowList = []string{
	"us-gaap:Revenues",
	"us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax",
	"us-gaap:NetIncomeLoss",
	"us-gaap:OperatingIncomeLoss",
	"us-gaap:GrossProfit",
	"us-gaap:EarningsPerShareBasic",
	"us-gaap:EarningsPerShareDiluted",
	"us-gaap:Assets",
	"us-gaap:Liabilities",
	"us-gaap:StockholdersEquity",
	"us-gaap:CashAndCashEquivalentsAtCarryingValue",
	"us-gaap:LongTermDebt",
	"us-gaap:CommonStockSharesOutstanding",
	"us-gaap:NetCashProvidedByUsedInOperatingActivities",
}

// SampleTags is the small fixed sample used to discover the most recent
// filing date. The provider reports filing dates per disclosure batch, so a
// few high-coverage tags are a sufficient freshness proxy.
var SampleTags = []string{
	"us-gaap:Revenues",
	"us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax",
	"us-gaap:NetIncomeLoss",
}

// Taxonomy is an externally supplied tag set. Tags replaces the allow-list;
// SampleTags, when present, replaces the freshness sample.
type Taxonomy struct {
	Tags       []string `yaml:"tags"`
	SampleTags []string `yaml:"sample_tags,omitempty"`
}

// LoadTaxonomy reads a tag taxonomy from a YAML file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "facts: read taxonomy %s", path)
	}

	// The YAML has a top-level "taxonomy" key
	var wrapper struct {
		Taxonomy Taxonomy `yaml:"taxonomy"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "facts: parse taxonomy")
	}

	t := &wrapper.Taxonomy
	if len(t.Tags) == 0 {
		return nil, eris.Errorf("facts: taxonomy %s defines no tags", path)
	}
	return t, nil
}
