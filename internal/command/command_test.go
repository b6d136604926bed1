package command

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/born-ml/adjoint/internal/analytics"
	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"
)

func testMeta(t *testing.T) (Meta, *cli.MockUi) {
	t.Helper()
	ui := cli.NewMockUi()
	return Meta{Ui: ui, Logger: hclog.NewNullLogger(), Fs: afero.NewMemMapFs(), Version: "test"}, ui
}

func decode[T any](t *testing.T, ui *cli.MockUi) T {
	t.Helper()
	var v T
	require.NoError(t, sonnet.Unmarshal([]byte(ui.OutputWriter.String()), &v), ui.OutputWriter.String())
	return v
}

func TestVersionCommand(t *testing.T) {
	meta, ui := testMeta(t)
	c := &VersionCommand{Meta: meta}
	assert.Equal(t, 0, c.Run(nil))
	assert.Equal(t, "adjoint test\n", ui.OutputWriter.String())
}

func TestPriceCommand_BlackScholes(t *testing.T) {
	meta, ui := testMeta(t)
	c := &PriceCommand{Meta: meta}
	code := c.Run([]string{"-forward", "110", "-strike", "120", "-vol", "0.2", "-mat", "2"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	out := decode[priceOutput](t, ui)
	assert.Equal(t, "bs", out.Model)
	assert.Empty(t, out.ID)
	assert.InDelta(t, 8.53592506466286, out.Value, 1e-10)
	assert.InDelta(t, 0.433995720171781, out.Sensitivities["forward"], 1e-10)
	assert.InDelta(t, 61.2095050098522, out.Sensitivities["vol"], 1e-8)
}

func TestPriceCommand_Bachelier(t *testing.T) {
	meta, ui := testMeta(t)
	c := &PriceCommand{Meta: meta}
	require.Equal(t, 0, c.Run([]string{"-model", "bachelier", "-forward", "100", "-strike", "100", "-vol", "20", "-mat", "1"}))

	out := decode[priceOutput](t, ui)
	assert.InDelta(t, 20/math.Sqrt(2*math.Pi), out.Value, 1e-10)
	assert.InDelta(t, 0.5, out.Sensitivities["forward"], 1e-10)
}

func TestPriceCommand_Errors(t *testing.T) {
	cases := map[string][]string{
		"unknown model": {"-model", "heston"},
		"bad flag":      {"-nope"},
		"negative vol":  {"-vol", "-0.1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			meta, ui := testMeta(t)
			c := &PriceCommand{Meta: meta}
			assert.Equal(t, 1, c.Run(args))
			assert.NotEmpty(t, ui.ErrorWriter.String())
		})
	}
}

func TestRiskCommand(t *testing.T) {
	meta, ui := testMeta(t)
	c := &RiskCommand{Meta: meta}
	code := c.Run([]string{"-strikes", "90,110", "-paths", "4000", "-workers", "2", "-batch", "250", "-seed", "5"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	out := decode[riskOutput](t, ui)
	require.Len(t, out.Results, 2)
	assert.Equal(t, 4000, out.Paths)
	assert.Equal(t, 90.0, out.Results[0].Strike)
	assert.Greater(t, out.Results[0].Value, out.Results[1].Value)
	for _, r := range out.Results {
		assert.Greater(t, r.Sensitivities["spot"], 0.0)
		assert.Less(t, r.Sensitivities["spot"], 1.0)
		assert.Greater(t, r.Sensitivities["vol"], 0.0)
	}
}

func TestRiskCommand_SingleStrikeMatchesMulti(t *testing.T) {
	args := []string{"-paths", "2000", "-workers", "1", "-batch", "100", "-seed", "9"}

	meta, ui := testMeta(t)
	require.Equal(t, 0, (&RiskCommand{Meta: meta}).Run(append(args, "-strikes", "100")))
	single := decode[riskOutput](t, ui)

	meta, ui = testMeta(t)
	require.Equal(t, 0, (&RiskCommand{Meta: meta}).Run(append(args, "-strikes", "100,120")))
	multi := decode[riskOutput](t, ui)

	assert.InDelta(t, single.Results[0].Value, multi.Results[0].Value, 1e-12)
	for name, v := range single.Results[0].Sensitivities {
		assert.InDelta(t, v, multi.Results[0].Sensitivities[name], 1e-9, name)
	}
}

func TestRiskCommand_Config(t *testing.T) {
	meta, ui := testMeta(t)
	body := `{"name": "file", "spot": 120, "strikes": [100], "paths": 1000, "workers": 1, "batch_size": 100}`
	require.NoError(t, afero.WriteFile(meta.Fs, "scenario.json", []byte(body), 0o644))

	c := &RiskCommand{Meta: meta}
	require.Equal(t, 0, c.Run([]string{"-config", "scenario.json", "-paths", "500"}), ui.ErrorWriter.String())

	out := decode[riskOutput](t, ui)
	assert.Equal(t, "file", out.Scenario)
	assert.Equal(t, 500, out.Paths, "flag overrides file")
	// Deep in the money: value is at least the discounted intrinsic.
	assert.Greater(t, out.Results[0].Value, 15.0)
}

func TestRiskCommand_InvalidConfig(t *testing.T) {
	meta, ui := testMeta(t)
	c := &RiskCommand{Meta: meta}
	assert.Equal(t, 1, c.Run([]string{"-config", "missing.json"}))
	assert.Contains(t, ui.ErrorWriter.String(), "Error loading scenario")

	meta, ui = testMeta(t)
	c = &RiskCommand{Meta: meta}
	assert.Equal(t, 1, c.Run([]string{"-spot", "-5"}))
	assert.Contains(t, ui.ErrorWriter.String(), "Invalid scenario")
}

func TestCalibrateCommand(t *testing.T) {
	const fwd, strike, mat = 100.0, 110.0, 1.5
	price := analytics.BlackScholes[autodiff.Float](fwd, strike, 0.25, mat).Value()
	args := []string{
		"-price", formatFloat(price),
		"-forward", "100", "-strike", "110", "-mat", "1.5",
	}

	vols := map[string]float64{}
	for _, method := range []string{"newton", "adam"} {
		meta, ui := testMeta(t)
		c := &CalibrateCommand{Meta: meta}
		require.Equal(t, 0, c.Run(append(args, "-optimizer", method)), ui.ErrorWriter.String())

		out := decode[calibrateOutput](t, ui)
		assert.Equal(t, method, out.Optimizer)
		assert.InDelta(t, 0, out.Residual, 1e-6)
		vols[method] = out.Vol
	}
	assert.InDelta(t, 0.25, vols["newton"], 1e-10)
	assert.InDelta(t, vols["newton"], vols["adam"], 1e-6)
}

func TestCalibrateCommand_Errors(t *testing.T) {
	meta, ui := testMeta(t)
	c := &CalibrateCommand{Meta: meta}
	assert.Equal(t, 1, c.Run([]string{"-price", "200", "-forward", "100"}))
	assert.Contains(t, ui.ErrorWriter.String(), "no-arbitrage")

	meta, ui = testMeta(t)
	c = &CalibrateCommand{Meta: meta}
	assert.Equal(t, 1, c.Run([]string{"-price", "5", "-optimizer", "lbfgs"}))
	assert.Contains(t, ui.ErrorWriter.String(), "Unknown optimizer")
}

func TestArchiveRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	meta, ui := testMeta(t)
	require.Equal(t, 0, (&PriceCommand{Meta: meta}).Run([]string{"-archive", db}))
	priced := decode[priceOutput](t, ui)
	require.NotEmpty(t, priced.ID)

	meta, ui = testMeta(t)
	require.Equal(t, 0, (&RiskCommand{Meta: meta}).Run([]string{"-paths", "200", "-workers", "1", "-archive", db}))
	risked := decode[riskOutput](t, ui)
	require.NotEmpty(t, risked.ID)

	meta, ui = testMeta(t)
	require.Equal(t, 0, (&RunsCommand{Meta: meta}).Run([]string{"-archive", db}))
	runs := decode[[]runOutput](t, ui)
	require.Len(t, runs, 2)

	ids := map[string]string{runs[0].ID: runs[0].Kind, runs[1].ID: runs[1].Kind}
	assert.Equal(t, "price", ids[priced.ID])
	assert.Equal(t, "risk", ids[risked.ID])
	for _, r := range runs {
		if r.Kind == "price" {
			assert.InDelta(t, priced.Value, r.Value, 1e-12)
			assert.Contains(t, r.Sensitivities, "vol")
		}
	}
}

func TestRunsCommand_RequiresArchive(t *testing.T) {
	meta, ui := testMeta(t)
	assert.Equal(t, 1, (&RunsCommand{Meta: meta}).Run(nil))
	assert.Contains(t, ui.ErrorWriter.String(), "-archive")
}

func TestFloatList(t *testing.T) {
	var l floatList
	require.NoError(t, l.Set("90, 100,110,"))
	assert.Equal(t, floatList{90, 100, 110}, l)
	assert.Equal(t, "90,100,110", l.String())
	assert.Error(t, l.Set("1,x"))
}
