package facts

import "time"

// filingDateLookback bounds how many of each sample tag's most recent records
// are scanned when discovering the freshest filing date.
const filingDateLookback = 5

// CacheAuthoritative decides whether a cached normalization remains valid.
// The cache is authoritative iff both filing dates are known and the cached
// one is at least as recent as the fresh one. Absence of either forces
// recomputation.
func CacheAuthoritative(cached, fresh *time.Time) bool {
	if cached == nil || fresh == nil {
		return false
	}
	return !cached.Before(*fresh)
}

// MostRecentFilingDate samples a few representative tags from a fresh
// extraction and returns the maximum filing date seen, or nil when none of
// the sampled records carries one. Extracting every tag just to find a
// timestamp is wasteful; the provider reports filing dates per disclosure
// batch, so a small sample suffices. A nil sample falls back to SampleTags.
func MostRecentFilingDate(c Company, sample []string) *time.Time {
	if sample == nil {
		sample = SampleTags
	}
	var latest *time.Time
	for _, tag := range sample {
		records := c.FactsByConcept(tag)
		if len(records) > filingDateLookback {
			records = records[:filingDateLookback]
		}
		for _, rec := range records {
			if rec.FilingDate == nil {
				continue
			}
			if latest == nil || rec.FilingDate.After(*latest) {
				d := *rec.FilingDate
				latest = &d
			}
		}
	}
	return latest
}
