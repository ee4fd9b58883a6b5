package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloivanco/fanrc/internal/catalog"
	"github.com/helloivanco/fanrc/pkg/logger"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(200, 7)
	b := generate(200, 7)
	assert.Equal(t, a, b)

	c := generate(200, 8)
	assert.NotEqual(t, a, c)
}

func TestGenerate_ProducesValidCatalog(t *testing.T) {
	products := generate(500, 42)

	snap, err := catalog.NewSnapshot(products, "generated")
	require.NoError(t, err)
	assert.Equal(t, 500, snap.Len())

	groups := catalog.GroupTypes(catalog.DefaultGroups, snap.Types())
	require.NotEmpty(t, groups)
	assert.Equal(t, catalog.OtherGroupName, groups[len(groups)-1].Name, "Decals fall into Other")
}

func TestRun_WritesLoadableFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "products.json")

	err := run(genConfig{Products: 50, Output: out, Seed: 1}, logger.Discard())
	require.NoError(t, err)

	loaded, err := catalog.NewFileLoader(out).Load(t.Context())
	require.NoError(t, err)
	assert.Len(t, loaded, 50)
}

func TestRun_RejectsNonPositiveCount(t *testing.T) {
	err := run(genConfig{Products: 0, Output: filepath.Join(t.TempDir(), "x.json")}, logger.Discard())
	assert.ErrorContains(t, err, "must be positive")

	_, statErr := os.Stat(filepath.Join(t.TempDir(), "x.json"))
	assert.True(t, os.IsNotExist(statErr))
}
