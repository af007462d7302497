package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jverbeke/go-crashstats/regression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crashstats.yaml")
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
input:
  source: "./accidents.csv"
  strict: true
  delimiter: "|"

models:
  - name: casualties
    outcome: casualties
    predictors:
      - road_type
      - lighting
    family: poisson
  - name: fatal
    outcome: fatal
    predictors:
      - road_type

fitter:
  max_iterations: 50
  tolerance: 1e-10

output:
  format: json
  plot: "./report.html"
`)

	cfg, err := Load(path)
	require.Nil(t, err)

	assert.Equal(t, "./accidents.csv", cfg.Input.Source)
	assert.True(t, cfg.Input.Strict)
	assert.Equal(t, "|", cfg.Input.Delimiter)
	assert.Equal(t, 50, cfg.Fitter.MaxIterations)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "./report.html", cfg.Output.Plot)

	specs := cfg.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, regression.FamilyPoisson, specs[0].Family)
	assert.Equal(t, []string{"road_type", "lighting"}, specs[0].Predictors)
	assert.Equal(t, regression.FamilyAuto, specs[1].Family)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
input:
  source: "./accidents.csv"
`)

	cfg, err := Load(path)
	require.Nil(t, err)

	assert.False(t, cfg.Input.Strict)
	assert.Equal(t, 25, cfg.Fitter.MaxIterations)
	assert.Equal(t, 0.05, cfg.Fitter.Significance)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Nil(t, cfg.Specs())
}

func TestLoadValidation(t *testing.T) {
	testData := map[string]struct {
		content string
	}{
		"bad format": {
			content: "output:\n  format: xml\n",
		},
		"bad delimiter": {
			content: "input:\n  delimiter: \"||\"\n",
		},
		"bad iterations": {
			content: "fitter:\n  max_iterations: 0\n",
		},
		"bad family": {
			content: "models:\n  - outcome: casualties\n    family: gamma\n",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, td.content))
			assert.NotNil(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NotNil(t, err)
}
