package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemconv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvDataDir, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Defaults.LitematicaVersion)
	assert.Equal(t, 1, cfg.Defaults.LitematicaSubVersion)
	assert.Equal(t, 3, cfg.Defaults.WorldEditVersion)
	assert.Equal(t, 1, cfg.Defaults.GadgetsVersion)
	assert.Equal(t, "data", cfg.GetDataDir())
	assert.Equal(t, filepath.Join("data", "schematics.db"), cfg.GetDatabase())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/schem
database: catalog.db
workers: 4
log:
  level: debug
  format: json
defaults:
  litematica_version: 7
  worldedit_version: 2
  gadgets_version: 2
  data_version: 3700
  fill_air: true
metadata:
  author: builder
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/schem", cfg.GetDataDir())
	assert.Equal(t, "/srv/schem/catalog.db", cfg.GetDatabase())
	assert.Equal(t, 4, cfg.GetWorkers())
	assert.Equal(t, 7, cfg.Defaults.LitematicaVersion)
	assert.Equal(t, 1, cfg.Defaults.LitematicaSubVersion)
	assert.Equal(t, 2, cfg.Defaults.WorldEditVersion)
	assert.Equal(t, 3700, cfg.Defaults.DataVersion)
	assert.True(t, cfg.Defaults.FillAir)
	assert.Equal(t, "builder", cfg.Metadata.Author)
	assert.True(t, cfg.Logger().Enabled(t.Context(), slog.LevelDebug))
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDataDir, "/tmp/schem")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.GetWorkers())
	assert.Equal(t, "/tmp/schem", cfg.GetDataDir())
}

func TestWorkersEnvFallback(t *testing.T) {
	t.Setenv(EnvWorkers, "3")
	assert.Equal(t, 3, Default().GetWorkers())
	t.Setenv(EnvWorkers, "nope")
	assert.Equal(t, 0, Default().GetWorkers())
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"litematica": "defaults:\n  litematica_version: 5\n",
		"worldedit":  "defaults:\n  worldedit_version: 1\n",
		"gadgets":    "defaults:\n  gadgets_version: 9\n",
		"workers":    "workers: -1\n",
		"level":      "log:\n  level: loud\n",
		"format":     "log:\n  format: xml\n",
		"yaml":       "workers: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
