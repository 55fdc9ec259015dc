package records

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "riskaudit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := Draft{AuditorName: "A", AuditorPosition: "B", Stage: "Preparation", PerformedWork: "x", Problems: "y"}
	id, err := store.Insert(ctx, first)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	id, err = store.Insert(ctx, first)
	require.NoError(t, err)
	require.Equal(t, int64(2), id)

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, Record{ID: 1, Draft: first}, all[0])
	require.Equal(t, Record{ID: 2, Draft: first}, all[1])
}

func TestFetchAllRoundTripPreservesFields(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	drafts := []Draft{
		{},
		{AuditorName: "Ирина", AuditorPosition: "CISO", Stage: "Analysis", Requirements: "ISO 27001", PerformedWork: "line one\nline two", Problems: "  padded  ", Results: "ok"},
		{AuditorName: "O'Brien", Stage: "not-a-stage", PerformedWork: "'; DROP TABLE audit_data; --"},
	}
	for i := 0; i < 10; i++ {
		drafts = append(drafts, Draft{AuditorName: fmt.Sprintf("auditor-%d", i), Stage: "ReportPreparation"})
	}
	for _, d := range drafts {
		_, err := store.Insert(ctx, d)
		require.NoError(t, err)
	}

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(drafts))
	for i, rec := range all {
		require.Equal(t, int64(i+1), rec.ID, "ids must be gap-free and ascending")
		require.Equal(t, drafts[i], rec.Draft)
	}

	again, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Equal(t, all, again)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, len(drafts), n)
}

func TestFetchAllEmptyStore(t *testing.T) {
	store := openTestStore(t)
	all, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "riskaudit.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = store.Insert(ctx, Draft{AuditorName: "A", Stage: "Preparation"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	id, err := reopened.Insert(ctx, Draft{AuditorName: "B", Stage: "Analysis"})
	require.NoError(t, err)
	require.Equal(t, int64(2), id)

	all, err := reopened.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "A", all[0].AuditorName)
	require.Equal(t, "B", all[1].AuditorName)
}

func TestOpenUnavailableMedium(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	store, err := Open(context.Background(), filepath.Join(blocker, "riskaudit.db"))
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.Nil(t, store)

	_, statErr := os.Stat(filepath.Join(blocker, "riskaudit.db"))
	require.Error(t, statErr)
}

func TestClosedStoreReportsUnavailable(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "riskaudit.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Insert(ctx, Draft{AuditorName: "A"})
	require.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = store.FetchAll(ctx)
	require.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = store.Count(ctx)
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestOpenPathWithURICharacters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit?mode=ro#2025 100%.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = store.Insert(ctx, Draft{AuditorName: "A", Stage: "Preparation"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.False(t, info.IsDir())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestDataSourceNameEscapesPath(t *testing.T) {
	dsn := dataSourceName("/tmp/a?b#c%d.db")
	require.True(t, strings.HasPrefix(dsn, "file:/tmp/a%3fb%23c%25d.db?"), dsn)
	require.Equal(t, 1, strings.Count(dsn, "?"))
}
