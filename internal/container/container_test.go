package container

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftcast/internal"
	"liftcast/internal/config"
	"liftcast/internal/errors"
	"liftcast/internal/testkit"
)

func quiet() *internal.Logger {
	return internal.NewLoggerTo(io.Discard, internal.LogLevelError)
}

func baseConfig() *config.Config {
	return &config.Config{
		Data: config.DataConfig{Source: config.SourceSynthetic, SyntheticDays: 5, SyntheticSeed: 1},
		Model: config.ModelConfig{
			Timezone:               "Asia/Rangoon",
			AdviceEntropyThreshold: 0.5,
		},
	}
}

func TestNew_Synthetic(t *testing.T) {
	c, err := New(context.Background(), baseConfig(), quiet())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "synthetic:days=5,seed=1", c.Source.Name())
	assert.Nil(t, c.DB)
	assert.NotNil(t, c.Metrics)
	assert.Equal(t, "Asia/Rangoon", c.Model.Location().String())

	snap, err := c.Model.Model(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5*288, snap.Table.Observations())
}

func TestNew_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "elevator.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	gen := testkit.DefaultElevatorConfig()
	gen.Days = 3
	require.NoError(t, testkit.WriteCSV(f, testkit.NewElevatorDataGenerator(gen).GenerateRows()))
	require.NoError(t, f.Close())

	cfg := baseConfig()
	cfg.Data = config.DataConfig{Source: config.SourceFile, LogFile: path}

	var logs bytes.Buffer
	c, err := New(context.Background(), cfg, internal.NewLoggerTo(&logs, internal.LogLevelInfo))
	require.NoError(t, err)

	pred, err := c.Model.Predict(context.Background(), 3, 30)
	require.NoError(t, err)
	assert.Equal(t, 3, pred.Record.Samples)
	assert.Contains(t, logs.String(), "component=LogFileSource", "file source logs through the container logger")
}

func TestNew_BadLayoutFile(t *testing.T) {
	cfg := baseConfig()
	cfg.Data = config.DataConfig{Source: config.SourceFile, LogFile: "x.csv", LayoutFile: filepath.Join(t.TempDir(), "missing.yaml")}

	_, err := New(context.Background(), cfg, quiet())
	require.Error(t, err)
}

func TestNew_UnknownSource(t *testing.T) {
	cfg := baseConfig()
	cfg.Data.Source = "kafka"

	_, err := New(context.Background(), cfg, quiet())
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.CodeFor(err))
}

func TestNew_BadTimezone(t *testing.T) {
	cfg := baseConfig()
	cfg.Model.Timezone = "Mars/Olympus"

	_, err := New(context.Background(), cfg, quiet())
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.CodeFor(err))
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, quiet())
	assert.Error(t, err)
}
