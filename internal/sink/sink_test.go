package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PopulationSnapshot/internal/domain"
)

func testSnapshot() domain.Snapshot {
	return domain.NewSnapshot(map[string]domain.CountryRecord{
		"250": {ISO3: "FRA", Name: "France", Population: 68170228, Year: domain.YearOf(2023), ISO2: domain.Some("FR")},
		"004": {ISO3: "AFG", Name: "Afghanistan", Population: 42239854, Year: domain.YearOf(2023)},
	})
}

func TestFileSinkWritesAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data", "country-population.json")
	fs := NewFileSink(path)

	require.NoError(t, fs.Write(context.Background(), testSnapshot()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := testSnapshot().Encode()
	require.NoError(t, err)
	assert.Equal(t, string(want), string(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileSinkCancelledContextLeavesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFileSink(path).Write(ctx, testSnapshot())
	require.Error(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(raw))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(NewFileSink("a.json"))

	s, err := reg.Resolve(NameFile)
	require.NoError(t, err)
	assert.Equal(t, NameFile, s.Name())

	_, err = reg.Resolve("s3")
	assert.EqualError(t, err, "sink s3 is not registered")

	_, err = reg.ResolveAll([]string{NameFile, NameFile})
	assert.Error(t, err)

	all, err := reg.ResolveAll([]string{NameFile})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
