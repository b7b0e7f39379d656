package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestEnvOverridesDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("RACEDA_HISTOGRAM_BINS", "7")
	t.Setenv("RACEDA_OUTPUT_DIR", "charts")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.HistogramBins)
	assert.Equal(t, "charts", c.OutputDir)
}

func TestSaveThenLoadHomeConfig(t *testing.T) {
	home := isolate(t)
	c := Default()
	c.WeatherColumn = "Going"
	c.Delimiter = ";"
	require.NoError(t, Save(c, ""))
	_, err := os.Stat(filepath.Join(home, ".raceda", "config.yaml"))
	require.NoError(t, err)

	back, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Going", back.WeatherColumn)
	assert.Equal(t, ';', back.DelimiterRune())
}

func TestExplicitConfigMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestExplicitConfigFile(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "raceda.yaml")
	require.NoError(t, os.WriteFile(p, []byte("chart_width: 800\ndrop_columns: [Hood]\n"), 0o644))
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 800, c.ChartWidth)
	assert.Equal(t, []string{"Hood"}, c.DropColumns)
}

func TestValidate(t *testing.T) {
	for _, d := range []string{"", ",", ";", "tab", "\t", "|"} {
		c := Default()
		c.Delimiter = d
		assert.NoError(t, c.Validate(), "delimiter %q", d)
	}

	cases := map[string]func(*Global){
		"bad delimiter": func(c *Global) { c.Delimiter = "x" },
		"zero bins":     func(c *Global) { c.HistogramBins = 0 },
		"tiny chart":    func(c *Global) { c.ChartWidth = 50 },
		"no output dir": func(c *Global) { c.OutputDir = "" },
		"no layouts":    func(c *Global) { c.DateLayouts = nil },
		"negative rows": func(c *Global) { c.MaxRows = -1 },
	}
	for name, mut := range cases {
		c := Default()
		mut(c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestDelimiterRune(t *testing.T) {
	cases := map[string]rune{"": 0, ",": ',', ";": ';', "tab": '\t', "\t": '\t', "|": '|', "x": 0}
	for in, want := range cases {
		c := Default()
		c.Delimiter = in
		assert.Equal(t, want, c.DelimiterRune(), in)
	}
}
