package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_PassValidation(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestValidate_RejectsWeightsNotSummingToOne(t *testing.T) {
	cfg := Defaults()
	cfg.FitnessWeights.IdleTime = 0.5
	err := Validate(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestValidate_RejectsElitismAbovePopulationSize(t *testing.T) {
	cfg := Defaults()
	cfg.GGAElitism = cfg.GGAPopulationSize + 1
	assert.Error(t, Validate(cfg))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().GGAPopulationSize, cfg.GGAPopulationSize)
}
