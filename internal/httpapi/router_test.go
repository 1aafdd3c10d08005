package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edgar-facts/internal/facts"
	"github.com/sells-group/edgar-facts/internal/service"
)

type stubService struct {
	resp      *facts.CompanyFactsResponse
	err       error
	lastIdent string
	lastQuery service.Query
}

func (s *stubService) GetCompanyFacts(ctx context.Context, identifier string, q service.Query) (*facts.CompanyFactsResponse, error) {
	s.lastIdent = identifier
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestRouter(svc FactsService) http.Handler {
	return NewRouter(NewHandler(svc, "quarterly", 4))
}

func doRequest(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubService{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCompanyFacts_OK(t *testing.T) {
	svc := &stubService{resp: &facts.CompanyFactsResponse{
		Company:        facts.CompanyInfo{Name: "Apple Inc.", CIK: "0000320193", Ticker: "AAPL"},
		IdentifierType: "ticker",
		Concepts:       []facts.Concept{{Tag: "us-gaap:Revenues", Label: "Revenues", Unit: "USD"}},
		Periods: []facts.Period{{
			ID:         "Q1 2024",
			EndDate:    "2024-03-31",
			PeriodType: "quarterly",
			Facts:      []facts.Fact{{Tag: "us-gaap:Revenues", Value: "100"}},
		}},
	}}

	rec := doRequest(t, newTestRouter(svc), "/api/financial/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp facts.CompanyFactsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Apple Inc.", resp.Company.Name)
	require.Len(t, resp.Periods, 1)
	assert.Equal(t, "Q1 2024", resp.Periods[0].ID)

	assert.Equal(t, "AAPL", svc.lastIdent)
	assert.Equal(t, service.Query{Granularity: "quarterly", Limit: 4}, svc.lastQuery)
}

func TestCompanyFacts_QueryParamsOverrideDefaults(t *testing.T) {
	svc := &stubService{resp: &facts.CompanyFactsResponse{}}

	rec := doRequest(t, newTestRouter(svc), "/api/financial/AAPL?period=annual&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Query{Granularity: "annual", Limit: 10}, svc.lastQuery)
}

func TestCompanyFacts_InvalidPeriod(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubService{}), "/api/financial/AAPL?period=monthly")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "period")
}

func TestCompanyFacts_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"abc", "-1"} {
		t.Run(limit, func(t *testing.T) {
			rec := doRequest(t, newTestRouter(&stubService{}), "/api/financial/AAPL?limit="+limit)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "limit")
		})
	}
}

func TestCompanyFacts_NotFound(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubService{err: facts.ErrNotFound}), "/api/financial/NOPE")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOPE")
}

func TestCompanyFacts_Unavailable(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubService{err: facts.ErrUnavailable}), "/api/financial/AAPL")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompanyFacts_InternalError(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubService{err: eris.New("broken pipe")}), "/api/financial/AAPL")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotContains(t, rec.Body.String(), "broken pipe")
}
