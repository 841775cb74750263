package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/config"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"SHA-1", "MD5"}, cfg.ChecksumAlgorithms)
	assert.Equal(t, 5, cfg.ConnectorThreads)
	assert.Equal(t, "id", cfg.RepositoryKeyFunction)
	assert.True(t, cfg.ResumeSupported)
}

func TestLoadReadsFileOverridingDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connector-threads: 12\ntracking-backend: bolt\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.ConnectorThreads)
	assert.Equal(t, "bolt", cfg.TrackingBackend)
	assert.Equal(t, "id", cfg.RepositoryKeyFunction, "fields absent from the file keep their default")
}

func TestLoadReadsEnvironmentOverride(t *testing.T) {
	t.Setenv("MVNRESOLVER_CONNECTOR_THREADS", "9")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.ConnectorThreads)
}

func TestBindRegistersFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "resolve"}
	v := viper.New()
	config.Bind(cmd, v)

	require.NoError(t, cmd.PersistentFlags().Set("connector-threads", "7"))
	assert.Equal(t, 7, v.GetInt("connector-threads"))
}

func TestResolvePriorityDisablesOnNaNOrDisabled(t *testing.T) {
	assert.True(t, math.IsNaN(config.ResolvePriority("nan")))
	assert.True(t, math.IsNaN(config.ResolvePriority("DISABLED")))
	assert.Equal(t, 2.5, config.ResolvePriority("2.5"))
	assert.Equal(t, float64(0), config.ResolvePriority("not-a-number"))
}
