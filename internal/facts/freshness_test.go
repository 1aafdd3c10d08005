package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheAuthoritative(t *testing.T) {
	t1 := day("2024-05-01")
	t2 := day("2024-04-01")

	t.Run("missing cached date", func(t *testing.T) {
		assert.False(t, CacheAuthoritative(nil, &t1))
	})

	t.Run("missing fresh date", func(t *testing.T) {
		assert.False(t, CacheAuthoritative(&t1, nil))
	})

	t.Run("both missing", func(t *testing.T) {
		assert.False(t, CacheAuthoritative(nil, nil))
	})

	t.Run("cached newer", func(t *testing.T) {
		assert.True(t, CacheAuthoritative(&t1, &t2))
	})

	t.Run("cached equal", func(t *testing.T) {
		assert.True(t, CacheAuthoritative(&t1, &t1))
	})

	t.Run("cached older", func(t *testing.T) {
		assert.False(t, CacheAuthoritative(&t2, &t1))
	})
}

func TestMostRecentFilingDate(t *testing.T) {
	withFiled := func(tag, end, filed string, v float64) RawFact {
		r := quarterRec(tag, "Q1", end, v)
		r.FilingDate = dayPtr(filed)
		return r
	}

	t.Run("max across sample tags", func(t *testing.T) {
		c := &fakeCompany{byTag: map[string][]RawFact{
			"us-gaap:Revenues": {
				withFiled("us-gaap:Revenues", "2024-03-31", "2024-04-20", 1000),
			},
			"us-gaap:NetIncomeLoss": {
				withFiled("us-gaap:NetIncomeLoss", "2024-03-31", "2024-05-02", 10),
			},
		}}

		got := MostRecentFilingDate(c, nil)
		require.NotNil(t, got)
		assert.Equal(t, day("2024-05-02"), *got)
	})

	t.Run("no filing dates", func(t *testing.T) {
		c := &fakeCompany{byTag: map[string][]RawFact{
			"us-gaap:Revenues": {quarterRec("us-gaap:Revenues", "Q1", "2024-03-31", 1000)},
		}}
		assert.Nil(t, MostRecentFilingDate(c, nil))
	})

	t.Run("no sampled tags present", func(t *testing.T) {
		c := &fakeCompany{byTag: map[string][]RawFact{
			"us-gaap:Assets": {withFiled("us-gaap:Assets", "2024-03-31", "2024-04-20", 100)},
		}}
		assert.Nil(t, MostRecentFilingDate(c, nil))
	})

	t.Run("custom sample tags", func(t *testing.T) {
		c := &fakeCompany{byTag: map[string][]RawFact{
			"us-gaap:Assets": {withFiled("us-gaap:Assets", "2024-03-31", "2024-04-20", 100)},
		}}

		got := MostRecentFilingDate(c, []string{"us-gaap:Assets"})
		require.NotNil(t, got)
		assert.Equal(t, day("2024-04-20"), *got)
	})

	t.Run("lookback window bounds the scan", func(t *testing.T) {
		// Six records most-recent-first; the newest filing date sits on the
		// sixth record, outside the five-record window.
		recs := []RawFact{
			withFiled("us-gaap:Revenues", "2024-03-31", "2024-04-20", 1),
			withFiled("us-gaap:Revenues", "2023-12-31", "2024-02-01", 2),
			withFiled("us-gaap:Revenues", "2023-09-30", "2023-11-01", 3),
			withFiled("us-gaap:Revenues", "2023-06-30", "2023-08-01", 4),
			withFiled("us-gaap:Revenues", "2023-03-31", "2023-05-01", 5),
			withFiled("us-gaap:Revenues", "2022-12-31", "2024-06-01", 6),
		}
		c := &fakeCompany{byTag: map[string][]RawFact{"us-gaap:Revenues": recs}}

		got := MostRecentFilingDate(c, nil)
		require.NotNil(t, got)
		assert.Equal(t, day("2024-04-20"), *got)
	})
}
