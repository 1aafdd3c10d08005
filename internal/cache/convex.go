package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-facts/internal/facts"
)

const (
	queryPath    = "/api/query"
	mutationPath = "/api/mutation"

	getFactsFunction   = "companyFacts:getCompanyFactsByTicker"
	storeFactsFunction = "companyFacts:storeCompanyFacts"
)

// ConvexOptions configures the Convex-backed cache client.
type ConvexOptions struct {
	BaseURL string
	// ReadTimeout bounds cache queries. It is deliberately shorter than
	// WriteTimeout: a slow read should fail fast and fall through to
	// recomputation, while a store is best-effort and can tolerate more
	// latency.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Convex talks to a Convex deployment over its HTTP function API.
type Convex struct {
	baseURL     string
	readClient  *http.Client
	writeClient *http.Client
}

// NewConvex creates the Convex cache client.
func NewConvex(opts ConvexOptions) *Convex {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Convex{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		readClient:  &http.Client{Timeout: opts.ReadTimeout},
		writeClient: &http.Client{Timeout: opts.WriteTimeout},
	}
}

// functionRequest is the Convex HTTP API request envelope.
type functionRequest struct {
	Path   string         `json:"path"`
	Args   map[string]any `json:"args"`
	Format string         `json:"format"`
}

// functionResponse is the Convex HTTP API response envelope.
type functionResponse struct {
	Status       string          `json:"status"`
	Value        json.RawMessage `json:"value"`
	ErrorMessage string          `json:"errorMessage"`
}

// storedFacts is the cached record shape.
type storedFacts struct {
	FilingDate int64                      `json:"filingDate"` // epoch milliseconds
	Facts      facts.CompanyFactsResponse `json:"facts"`
}

// Get queries the deployment for the most recent cached facts for a ticker.
func (c *Convex) Get(ctx context.Context, ticker string) (*Entry, error) {
	value, err := c.call(ctx, c.readClient, queryPath, functionRequest{
		Path:   getFactsFunction,
		Args:   map[string]any{"ticker": ticker},
		Format: "json",
	})
	if err != nil {
		return nil, err
	}
	if value == nil || string(value) == "null" {
		return nil, nil
	}

	var stored storedFacts
	if err := json.Unmarshal(value, &stored); err != nil {
		return nil, eris.Wrap(err, "convex: decode cached facts")
	}
	if stored.FilingDate == 0 {
		return nil, eris.New("convex: cached record missing filingDate")
	}

	return &Entry{
		Ticker:     ticker,
		FilingDate: time.UnixMilli(stored.FilingDate).UTC(),
		Facts:      stored.Facts,
	}, nil
}

// Put inserts a new cached record. The deployment always appends; prior
// entries for the ticker remain as history.
func (c *Convex) Put(ctx context.Context, entry Entry) error {
	_, err := c.call(ctx, c.writeClient, mutationPath, functionRequest{
		Path: storeFactsFunction,
		Args: map[string]any{
			"ticker":     entry.Ticker,
			"facts":      entry.Facts,
			"filingDate": entry.FilingDate.UnixMilli(),
		},
		Format: "json",
	})
	return err
}

func (c *Convex) Close() error { return nil }

func (c *Convex) call(ctx context.Context, client *http.Client, path string, fn functionRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(fn)
	if err != nil {
		return nil, eris.Wrap(err, "convex: encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "convex: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "convex: call %s", fn.Path)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("convex: %s returned status %d", fn.Path, resp.StatusCode)
	}

	var fr functionResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, eris.Wrap(err, "convex: decode response")
	}
	if fr.Status != "success" {
		return nil, eris.Errorf("convex: %s failed: %s", fn.Path, fr.ErrorMessage)
	}

	return fr.Value, nil
}
