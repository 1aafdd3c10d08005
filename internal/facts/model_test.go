package facts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodID(t *testing.T) {
	tests := []struct {
		name   string
		fiscal string
		end    time.Time
		want   string
	}{
		{"first quarter", "Q1", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), "Q1 2024"},
		{"fiscal year", "FY", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), "FY 2023"},
		{"lower case code", "q2", time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), "Q2 2024"},
		{"empty code", "", time.Date(2022, 9, 24, 0, 0, 0, 0, time.UTC), "UNKNOWN 2022"},
		{"garbage code", "H1", time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC), "UNKNOWN 2022"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodID(tt.fiscal, tt.end))
		})
	}
}

func TestPeriodType(t *testing.T) {
	assert.Equal(t, "annual", PeriodType("FY"))
	assert.Equal(t, "annual", PeriodType("fy"))
	assert.Equal(t, "quarterly", PeriodType("Q3"))
	assert.Equal(t, "quarterly", PeriodType(""))
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "NetIncomeLoss", LocalName("us-gaap:NetIncomeLoss"))
	assert.Equal(t, "Revenues", LocalName("Revenues"))
	assert.Equal(t, "EntityCommonStockSharesOutstanding", LocalName("dei:EntityCommonStockSharesOutstanding"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "100", FormatValue(100))
	assert.Equal(t, "3.14", FormatValue(3.14))
	assert.Equal(t, "-12500000", FormatValue(-12500000))
}

func TestNormalizeCIK(t *testing.T) {
	assert.Equal(t, "0000320193", NormalizeCIK("320193"))
	assert.Equal(t, "0000320193", NormalizeCIK("0000320193"))
	assert.Equal(t, "0000000007", NormalizeCIK("7"))
	assert.Equal(t, "AAPL", NormalizeCIK("AAPL"))
}

func TestIsCIK(t *testing.T) {
	assert.True(t, IsCIK("320193"))
	assert.True(t, IsCIK("0000320193"))
	assert.False(t, IsCIK("AAPL"))
	assert.False(t, IsCIK("BRK.B"))
}
