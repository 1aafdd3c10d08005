package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgres_GetHit(t *testing.T) {
	store, mock := newMockPostgres(t)
	filing := time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC)

	payload, err := json.Marshal(testResponse())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT facts, filing_date FROM company_facts_cache").
		WithArgs("AAPL").
		WillReturnRows(pgxmock.NewRows([]string{"facts", "filing_date"}).AddRow(payload, filing))

	entry, err := store.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "AAPL", entry.Ticker)
	assert.True(t, entry.FilingDate.Equal(filing))
	assert.Equal(t, "Apple Inc.", entry.Facts.Company.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetAbsent(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT facts, filing_date FROM company_facts_cache").
		WithArgs("AAPL").
		WillReturnError(pgx.ErrNoRows)

	entry, err := store.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, entry)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetQueryError(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT facts, filing_date FROM company_facts_cache").
		WithArgs("AAPL").
		WillReturnError(eris.New("connection reset"))

	_, err := store.Get(context.Background(), "AAPL")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Put(t *testing.T) {
	store, mock := newMockPostgres(t)
	filing := time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC)

	payload, err := json.Marshal(testResponse())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO company_facts_cache").
		WithArgs(pgxmock.AnyArg(), "AAPL", payload, filing).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Put(context.Background(), Entry{Ticker: "AAPL", FilingDate: filing, Facts: testResponse()})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS company_facts_cache").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
