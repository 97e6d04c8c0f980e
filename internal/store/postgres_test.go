package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS mappings").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadMappings(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT ticker, company_id FROM mappings").
		WillReturnRows(pgxmock.NewRows([]string{"ticker", "company_id"}).
			AddRow("AAPL", "co1").
			AddRow("STZ", "co2"))

	mappings, err := s.LoadMappings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"AAPL": "co1", "STZ": "co2"}, mappings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPutMapping(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO mappings").
		WithArgs("AAPL", "co1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, s.PutMapping(context.Background(), "AAPL", "co1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveMappings(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO mappings").
		WithArgs("AAPL", "co1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, s.SaveMappings(context.Background(), map[string]string{"AAPL": "co1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAppendDecision(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO decisions").
		WithArgs(pgxmock.AnyArg(), "AAPL", "Apple Inc.", "exact", "Apple Inc.", "co1", pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.AppendDecision(context.Background(), model.Decision{
		Ticker: "AAPL", FeedName: "Apple Inc.", Kind: model.DecisionExact,
		MatchedName: "Apple Inc.", MatchedID: "co1",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
