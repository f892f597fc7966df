package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestUpsertAndGet(t *testing.T) {
	c := openTestCatalog(t)

	e := Entry{
		ID:         "job-1",
		URL:        "https://example.com/a.zip",
		FileName:   "a.zip",
		FinalPath:  "/tmp/a.zip",
		Status:     StatusDownloading,
		TotalBytes: 1000,
	}
	require.NoError(t, c.Upsert(e))

	got, err := c.Get("job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.URL, got.URL)
	assert.Equal(t, StatusDownloading, got.Status)
	assert.NotZero(t, got.CreatedAt)
}

func TestUpsertOverwrites(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.Upsert(Entry{ID: "job-2", URL: "u", Status: StatusDownloading, TotalBytes: 100}))
	require.NoError(t, c.Upsert(Entry{ID: "job-2", URL: "u", Status: StatusCompleted, TotalBytes: 100, Downloaded: 100}))

	got, err := c.Get("job-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.EqualValues(t, 100, got.Downloaded)
}

func TestSetStatus(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.Upsert(Entry{ID: "job-3", URL: "u", Status: StatusDownloading}))
	require.NoError(t, c.SetStatus("job-3", StatusPaused, 42))

	got, err := c.Get("job-3")
	require.NoError(t, err)
	assert.Equal(t, StatusPaused, got.Status)
	assert.EqualValues(t, 42, got.Downloaded)

	assert.Error(t, c.SetStatus("missing", StatusPaused, 0))
}

func TestListAndRemove(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.Upsert(Entry{ID: "a", URL: "u1", Status: StatusCompleted}))
	require.NoError(t, c.Upsert(Entry{ID: "b", URL: "u2", Status: StatusPaused}))

	entries, err := c.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, c.Remove("a"))
	entries, err = c.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].ID)

	got, err := c.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}
