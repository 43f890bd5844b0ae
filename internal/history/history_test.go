package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := s.Append(ctx, Record{
			ID:         fmt.Sprintf("id-%d", i),
			StartedAt:  base.Add(time.Duration(i) * time.Second),
			DurationMS: int64(10 * (i + 1)),
			Trigger:    "manual",
			Files:      2,
			Output:     "dist/app.min.css",
			Status:     "success",
			Bytes:      100,
		})
		require.NoError(t, err)
	}

	records, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, "id-2", records[0].ID)
	assert.Equal(t, "id-0", records[2].ID)
	assert.Equal(t, base.Add(2*time.Second).Unix(), records[0].StartedAt.Unix())
	assert.Equal(t, "manual", records[0].Trigger)
	assert.Equal(t, int64(30), records[0].DurationMS)
}

func TestRecentLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, Record{
			ID:        fmt.Sprintf("id-%d", i),
			StartedAt: time.Now().Add(time.Duration(i) * time.Second),
			Trigger:   "change",
			Output:    "out.css",
			Status:    "success",
		}))
	}

	records, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFailedRecordKeepsError(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, Record{
		ID:        "failed-1",
		StartedAt: time.Now(),
		Trigger:   "change",
		Changed:   "styles/a.css",
		Output:    "out.css",
		Status:    "failed",
		Error:     "read styles/a.css: no such file",
	}))

	records, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "failed", records[0].Status)
	assert.Equal(t, "styles/a.css", records[0].Changed)
	assert.Contains(t, records[0].Error, "no such file")
}

func TestRecentEmpty(t *testing.T) {
	s := openStore(t)
	records, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
