package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesAndUsesWAL(t *testing.T) {
	sqlDB, err := Open(filepath.Join(t.TempDir(), "comb.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	var mode string
	require.NoError(t, sqlDB.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var name string
	require.NoError(t, sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='builds'`).Scan(&name))
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comb.db")
	first, err := Open(path)
	require.NoError(t, err)
	_, err = RecordBuild(first, Build{FormID: "f", CompiledAt: time.Now()})
	require.NoError(t, err)
	first.Close()

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	builds, err := ListBuilds(second, "")
	require.NoError(t, err)
	assert.Len(t, builds, 1)
}

func TestRecordBuild_RoundTrip(t *testing.T) {
	sqlDB, err := Open(filepath.Join(t.TempDir(), "comb.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	at := time.Date(2024, 3, 5, 14, 7, 30, 0, time.UTC)
	id, err := RecordBuild(sqlDB, Build{
		SourcePath:   "forms/hh.comb",
		OutputPath:   "hh.xlsx",
		FormID:       "hh",
		Version:      "2403051407",
		SurveyRows:   12,
		ChoiceRows:   4,
		LintWarnings: 2,
		CompiledAt:   at,
	})
	require.NoError(t, err)

	builds, err := ListBuilds(sqlDB, "hh")
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, Build{
		ID:           id,
		SourcePath:   "forms/hh.comb",
		OutputPath:   "hh.xlsx",
		FormID:       "hh",
		Version:      "2403051407",
		SurveyRows:   12,
		ChoiceRows:   4,
		LintWarnings: 2,
		CompiledAt:   at,
	}, builds[0])
}

func TestListBuilds_NewestFirstAndFiltered(t *testing.T) {
	sqlDB, err := Open(filepath.Join(t.TempDir(), "comb.db"))
	require.NoError(t, err)
	defer sqlDB.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, form := range []string{"a", "b", "a"} {
		_, err := RecordBuild(sqlDB, Build{FormID: form, Version: string(rune('1' + i)), CompiledAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	all, err := ListBuilds(sqlDB, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].Version)
	assert.Equal(t, "1", all[2].Version)

	onlyA, err := ListBuilds(sqlDB, "a")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "3", onlyA[0].Version)

	none, err := ListBuilds(sqlDB, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}
