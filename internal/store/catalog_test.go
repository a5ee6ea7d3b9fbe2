package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_RecordAndGet(t *testing.T) {
	c := openTestCatalog(t)

	rec := RunRecord{
		Degree:     5,
		Path:       "/data/roots_degree_5.dat",
		Roots:      160,
		Failures:   0,
		Complete:   true,
		FinishedAt: time.Now(),
	}
	require.NoError(t, c.Record(rec))

	got, found, err := c.Get(5)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.Degree, got.Degree)
	assert.Equal(t, rec.Path, got.Path)
	assert.Equal(t, rec.Roots, got.Roots)
	assert.True(t, got.Complete)
	assert.WithinDuration(t, rec.FinishedAt, got.FinishedAt, time.Second)
}

func TestCatalog_GetMissing(t *testing.T) {
	c := openTestCatalog(t)

	_, found, err := c.Get(9)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCatalog_IncompleteRunIsExplicit(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.Record(RunRecord{
		Degree:     10,
		Path:       "/data/roots_degree_10.dat",
		Roots:      4321,
		Failures:   2,
		Complete:   false,
		FinishedAt: time.Now(),
	}))

	got, found, err := c.Get(10)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, got.Complete, "cancelled runs must be marked incomplete")
	assert.Equal(t, int64(2), got.Failures)
}

func TestCatalog_RecordReplacesByDegree(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.Record(RunRecord{Degree: 4, Path: "a", Roots: 1, Complete: false, FinishedAt: time.Now()}))
	require.NoError(t, c.Record(RunRecord{Degree: 4, Path: "b", Roots: 64, Complete: true, FinishedAt: time.Now()}))

	recs, err := c.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].Path)
	assert.Equal(t, int64(64), recs[0].Roots)
	assert.True(t, recs[0].Complete)
}

func TestCatalog_ListOrdered(t *testing.T) {
	c := openTestCatalog(t)

	for _, d := range []int{7, 2, 5} {
		require.NoError(t, c.Record(RunRecord{
			Degree: d, Path: "p", Roots: 0, Complete: true, FinishedAt: time.Now(),
		}))
	}

	recs, err := c.List()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []int{recs[0].Degree, recs[1].Degree, recs[2].Degree}, []int{2, 5, 7})
}
