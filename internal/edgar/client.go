package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/edgar-facts/internal/facts"
	"github.com/sells-group/edgar-facts/internal/fetcher"
)

const (
	defaultDataBaseURL = "https://data.sec.gov"
	defaultWWWBaseURL  = "https://www.sec.gov"

	companyFactsPath = "/api/xbrl/companyfacts/CIK%s.json"
	tickerMapPath    = "/files/company_tickers.json"
)

// Client fetches company facts and the ticker-to-CIK mapping from SEC EDGAR.
type Client struct {
	fetcher     fetcher.Fetcher
	dataBaseURL string
	wwwBaseURL  string

	mu         sync.Mutex
	tickers    map[string]tickerEntry // upper-case ticker -> entry
	tickerETag string
}

type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURLs overrides the SEC endpoints, used by tests.
func WithBaseURLs(dataURL, wwwURL string) Option {
	return func(c *Client) {
		c.dataBaseURL = strings.TrimRight(dataURL, "/")
		c.wwwBaseURL = strings.TrimRight(wwwURL, "/")
	}
}

// NewClient creates a Client over the given fetcher.
func NewClient(f fetcher.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:     f,
		dataBaseURL: defaultDataBaseURL,
		wwwBaseURL:  defaultWWWBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCompanyFacts downloads and parses the company facts document for a
// zero-padded CIK.
func (c *Client) FetchCompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	url := c.dataBaseURL + fmt.Sprintf(companyFactsPath, facts.NormalizeCIK(cik))
	body, err := c.fetcher.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	return ParseCompanyFacts(body)
}

// CIKForTicker resolves a ticker symbol (case-insensitive) to its
// zero-padded CIK using SEC's published mapping. The mapping is held in
// memory and revalidated with a conditional request on each call.
func (c *Client) CIKForTicker(ctx context.Context, ticker string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refreshTickersLocked(ctx); err != nil {
		if c.tickers == nil {
			return "", err
		}
		// A stale mapping is still usable; resolution failures below will
		// surface as not-found.
		zap.L().Warn("ticker map refresh failed, using cached copy", zap.Error(err))
	}

	entry, ok := c.tickers[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return "", facts.ErrNotFound
	}
	return fmt.Sprintf("%010d", entry.CIK), nil
}

func (c *Client) refreshTickersLocked(ctx context.Context) error {
	body, etag, changed, err := c.fetcher.DownloadIfChanged(ctx, c.wwwBaseURL+tickerMapPath, c.tickerETag)
	if err != nil {
		return eris.Wrap(err, "edgar: fetch ticker map")
	}
	if !changed {
		return nil
	}
	defer body.Close() //nolint:errcheck

	// Response shape: { "0": {"cik_str": 320193, "ticker": "AAPL", ...}, ... }
	var raw map[string]tickerEntry
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return eris.Wrap(err, "edgar: parse ticker map")
	}

	tickers := make(map[string]tickerEntry, len(raw))
	for _, e := range raw {
		tickers[strings.ToUpper(e.Ticker)] = e
	}
	c.tickers = tickers
	c.tickerETag = etag

	zap.L().Debug("ticker map refreshed", zap.Int("tickers", len(tickers)))
	return nil
}
