package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scriptplan/internal/asset"
	tu "github.com/roach88/scriptplan/internal/testutil"
)

var errDiskIO = errors.New("disk I/O error")

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, WithClock(tu.NewStepClock().Now)), mock
}

func TestListAssets_QueryFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .* FROM assets").
		WithArgs("t1").
		WillReturnError(errDiskIO)

	_, err := s.ListAssets(context.Background(), "t1")
	assert.ErrorIs(t, err, errDiskIO)
	assert.Contains(t, err.Error(), "query assets")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAssets_CorruptJSON(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "fingerprint", "name", "content", "source", "category", "platform",
		"risk_level", "suggested_migration", "confidence", "details", "migration_status",
		"dependencies", "priority", "priority_factors", "priority_reason",
		"estimated_time_minutes", "time_estimate_factors",
		"created_at", "updated_at", "annotated_at",
	}).AddRow(
		"a", "t1", "fp", "", "x", "api", "pixel", "meta",
		"low", "web_pixel", "high", "{}", "pending",
		"not-json", 0, nil, "",
		0, nil,
		"2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z", nil,
	)
	mock.ExpectQuery("SELECT .* FROM assets").WillReturnRows(rows)

	_, err := s.ListAssets(context.Background(), "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal dependencies")
}

func TestUpsertAsset_ExecFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO assets").WillReturnError(errDiskIO)

	got, err := s.UpsertAsset(context.Background(), tu.NewAsset("a", asset.CategoryPixel, "meta"))
	assert.Nil(t, got)
	assert.ErrorIs(t, err, errDiskIO)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAsset_ConflictReportsNil(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO assets").WillReturnResult(sqlmock.NewResult(0, 0))

	got, err := s.UpsertAsset(context.Background(), tu.NewAsset("a", asset.CategoryPixel, "meta"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateAnnotations_ExecFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE assets SET priority = \\?, annotated_at = \\? WHERE id = \\?").
		WithArgs(7, sqlmock.AnyArg(), "a").
		WillReturnError(errDiskIO)

	p := 7
	err := s.UpdateAnnotations(context.Background(), "a", asset.Annotations{Priority: &p})
	assert.ErrorIs(t, err, errDiskIO)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_RollsBackOnInvalidTransition(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT migration_status FROM assets").
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"migration_status"}).AddRow("completed"))
	mock.ExpectRollback()

	_, err := s.UpdateStatus(context.Background(), "a", asset.StatusInProgress)
	assert.ErrorIs(t, err, asset.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_TerminalExecFailureRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT migration_status FROM assets").
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"migration_status"}).AddRow("in_progress"))
	mock.ExpectExec("priority = 0, priority_factors = NULL").
		WithArgs("completed", sqlmock.AnyArg(), "a").
		WillReturnError(errDiskIO)
	mock.ExpectRollback()

	_, err := s.UpdateStatus(context.Background(), "a", asset.StatusCompleted)
	assert.ErrorIs(t, err, errDiskIO)
	assert.NoError(t, mock.ExpectationsWereMet())
}
