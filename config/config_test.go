package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.SupportFloor)
	assert.Equal(t, 0.25, cfg.TestFraction)
	assert.Equal(t, 100, cfg.Iterations)
	assert.Equal(t, 0.5, cfg.Threshold)
	assert.Equal(t, NormalizeBatch, cfg.Normalization)
	assert.Positive(t, cfg.WorkerCount())
}

func TestValidate(t *testing.T) {
	testData := map[string]struct {
		mutate func(*Config)
		param  string
	}{
		"negative floor":     {func(c *Config) { c.SupportFloor = -1 }, "support-floor"},
		"empty label":        {func(c *Config) { c.LabelColumn = "" }, "label-column"},
		"bias equals label":  {func(c *Config) { c.BiasColumn = c.LabelColumn }, "bias-column"},
		"test fraction zero": {func(c *Config) { c.TestFraction = 0 }, "test-fraction"},
		"test fraction one":  {func(c *Config) { c.TestFraction = 1 }, "test-fraction"},
		"no iterations":      {func(c *Config) { c.Iterations = 0 }, "iterations"},
		"negative workers":   {func(c *Config) { c.Workers = -2 }, "workers"},
		"tolerance too big":  {func(c *Config) { c.Tolerance = 1 }, "tolerance"},
		"threshold above 1":  {func(c *Config) { c.Threshold = 1.5 }, "threshold"},
		"unknown normalizer": {func(c *Config) { c.Normalization = "zscore" }, "normalization"},
		"holdout one":        {func(c *Config) { c.Holdout = 1 }, "holdout"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			td.mutate(&cfg)

			var valErr *errors.ValidationError
			require.True(t, errors.As(cfg.Validate(), &valErr))
			assert.Equal(t, td.param, valErr.ParamName)
		})
	}
}

func TestWorkerCount(t *testing.T) {
	cfg := Default()
	cfg.Workers = 3
	assert.Equal(t, 3, cfg.WorkerCount())
}
