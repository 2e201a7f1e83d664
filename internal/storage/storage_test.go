package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevatic20/worktime-app/internal/storage"
	"github.com/elevatic20/worktime-app/internal/timecalc"
)

func backends(t *testing.T) map[string]storage.Blobs {
	t.Helper()
	db, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "wt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]storage.Blobs{
		"files":  storage.NewFiles(filepath.Join(t.TempDir(), "data")),
		"sqlite": db,
	}
}

func TestBlobs_ReadMissing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Read(context.Background(), "nobody_03-2024.json")
			assert.ErrorIs(t, err, storage.ErrNotExist)
		})
	}
}

func TestBlobs_WriteOverwritesWholeValue(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Write(ctx, "ana_03-2024.json", []byte(`[{"date":"2024-03-05"}]`)))
			require.NoError(t, b.Write(ctx, "ana_03-2024.json", []byte(`[]`)))

			got, err := b.Read(ctx, "ana_03-2024.json")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got))
		})
	}
}

func TestBlobs_Quarantine(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Write(ctx, "ana_03-2024.json", []byte("{bad json")))

			backup, err := b.Quarantine(ctx, "ana_03-2024.json")
			require.NoError(t, err)
			assert.Equal(t, "ana_03-2024.json.corrupt", backup)

			_, err = b.Read(ctx, "ana_03-2024.json")
			assert.ErrorIs(t, err, storage.ErrNotExist)

			data, err := b.Read(ctx, backup)
			require.NoError(t, err)
			assert.Equal(t, "{bad json", string(data))
		})
	}
}

func TestBlobs_RejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "..", "../x.json", `a\b.json`} {
				err := b.Write(ctx, key, []byte("x"))
				assert.ErrorIs(t, err, storage.ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestMonths(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{
				"ana_04-2024.json",
				"ana_12-2023.json",
				"ana_b_01-2024.json",
				"ana_05-2024.json.corrupt",
				"state.json",
			} {
				require.NoError(t, b.Write(ctx, k, []byte("[]")))
			}

			months, err := storage.Months(ctx, b, "ana")
			require.NoError(t, err)
			assert.Equal(t, []timecalc.Month{
				{Year: 2023, Month: time.December},
				{Year: 2024, Month: time.April},
			}, months)

			months, err = storage.Months(ctx, b, "ana_b")
			require.NoError(t, err)
			assert.Equal(t, []timecalc.Month{{Year: 2024, Month: time.January}}, months)
		})
	}
}

func TestKey(t *testing.T) {
	m := timecalc.Month{Year: 2024, Month: time.March}

	key, err := storage.Key("Toni", m)
	require.NoError(t, err)
	assert.Equal(t, "Toni_03-2024.json", key)

	for _, bad := range []string{"", "   ", "a/b", `a\b`, "..", "x..y"} {
		_, err := storage.Key(bad, m)
		assert.ErrorIs(t, err, storage.ErrInvalidUser, "user %q", bad)
	}
}

func TestParseKey(t *testing.T) {
	user, m, ok := storage.ParseKey("john_doe_11-2025.json")
	require.True(t, ok)
	assert.Equal(t, "john_doe", user)
	assert.Equal(t, timecalc.Month{Year: 2025, Month: time.November}, m)

	for _, bad := range []string{"state.json", "_03-2024.json", "ana_03-2024.json.corrupt", "ana_2024.json"} {
		_, _, ok := storage.ParseKey(bad)
		assert.False(t, ok, "key %q", bad)
	}
}

func TestFiles_AtomicWriteLeavesNoTemp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	f := storage.NewFiles(dir)
	require.NoError(t, f.Write(context.Background(), "ana_03-2024.json", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ana_03-2024.json", entries[0].Name())
}

func TestFiles_ListMissingDir(t *testing.T) {
	f := storage.NewFiles(filepath.Join(t.TempDir(), "missing"))
	keys, err := f.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
