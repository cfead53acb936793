package pgkv

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellasalon/booking-platform/internal/store"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestReadMissingRowIsEmpty(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT records FROM collections").
		WithArgs(store.KeyServices).
		WillReturnError(pgx.ErrNoRows)

	s := NewWithDB(mock, logging.Discard())
	records, err := s.ReadCollection(context.Background(), store.KeyServices)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadReturnsStoredRecords(t *testing.T) {
	mock := newMock(t)
	payload := []byte(`[{"id":"apt-1"},{"id":"apt-2"}]`)
	mock.ExpectQuery("SELECT records FROM collections").
		WithArgs(store.KeyAppointments).
		WillReturnRows(pgxmock.NewRows([]string{"records"}).AddRow(payload))

	s := NewWithDB(mock, logging.Discard())
	records, err := s.ReadCollection(context.Background(), store.KeyAppointments)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.JSONEq(t, `{"id":"apt-1"}`, string(records[0]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadCorruptPayloadFailsSoft(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT records FROM collections").
		WithArgs(store.KeyUsers).
		WillReturnRows(pgxmock.NewRows([]string{"records"}).AddRow([]byte("{broken")))

	s := NewWithDB(mock, logging.Discard())
	records, err := s.ReadCollection(context.Background(), store.KeyUsers)
	require.NoError(t, err, "corrupt payload must not surface an error")
	assert.Empty(t, records)
}

func TestWriteUpserts(t *testing.T) {
	mock := newMock(t)
	records := []json.RawMessage{json.RawMessage(`{"id":"svc-1"}`)}
	mock.ExpectExec("INSERT INTO collections").
		WithArgs(store.KeyServices, []byte(`[{"id":"svc-1"}]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewWithDB(mock, logging.Discard())
	require.NoError(t, s.WriteCollection(context.Background(), store.KeyServices, records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteFailureSurfaces(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("INSERT INTO collections").
		WithArgs(store.KeyServices, []byte(`[]`)).
		WillReturnError(assert.AnError)

	s := NewWithDB(mock, logging.Discard())
	err := s.WriteCollection(context.Background(), store.KeyServices, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
