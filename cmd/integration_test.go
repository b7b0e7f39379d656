package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/raceda/internal/config"
	"github.com/KaramelBytes/raceda/internal/dataset"
	"github.com/KaramelBytes/raceda/internal/manifest"
)

const horsesCSV = `HorseID,MeetingDate,WeightValue,StartingPrice,Weather,TrackType,Won,Hood,Eyecover,TongueStrap
101,2018-01-05,126,5/2,Rain,Turf,1,,,
102,2018-01-05,131,7/1,Rain,Turf,0,,,
103,2018-01-06,120,05-Feb,Fine,AW,0,,,
101,not-a-date,128,Evens,Fine,AW,1,,,
104,06/01/2018,,11/4F,,Turf,0,,,
`

// resetFlags restores every flag to its default so Changed state does not
// leak between invocations of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its error.
func execute(args ...string) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runCLI is a helper to execute the root command with args.
func runCLI(t *testing.T, args ...string) {
	t.Helper()
	if err := execute(args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// tempHome isolates config under a temporary HOME.
func tempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

func writeHorses(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "Horses.csv")
	if err := os.WriteFile(p, []byte(horsesCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestCLI_RenderWritesChartsAndManifest(t *testing.T) {
	home := tempHome(t)
	in := writeHorses(t, home)
	out := filepath.Join(home, "out")

	runCLI(t, "render", in, "--out", out, "--width", "400", "--height", "300")

	m, err := manifest.Load(out)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Rows != 5 || m.Cols != 10 {
		t.Fatalf("unexpected shape %dx%d", m.Rows, m.Cols)
	}
	if len(m.Artifacts) != 9 {
		t.Fatalf("expected 9 artifacts, got %d", len(m.Artifacts))
	}
	for _, a := range m.Artifacts {
		if _, err := os.Stat(filepath.Join(out, a.File)); err != nil {
			t.Fatalf("missing artifact %s: %v", a.File, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "eda.xlsx")); err == nil {
		t.Fatalf("render must not write the workbook")
	}
}

func TestCLI_RunWritesWorkbook(t *testing.T) {
	home := tempHome(t)
	in := writeHorses(t, home)
	out := filepath.Join(home, "out")

	runCLI(t, "run", in, "--out", out, "--width", "400", "--height", "300", "--bins", "5")
	if _, err := os.Stat(filepath.Join(out, "eda.xlsx")); err != nil {
		t.Fatalf("expected workbook: %v", err)
	}
}

func TestCLI_ProfileToFile(t *testing.T) {
	home := tempHome(t)
	in := writeHorses(t, home)
	md := filepath.Join(home, "profile.md")

	runCLI(t, "profile", in, "-o", md, "--sample-rows", "2")
	b, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	s := string(b)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 5", "[SCHEMA]", "[SUMMARY STATISTICS]"} {
		if !strings.Contains(s, want) {
			t.Fatalf("profile missing %q:\n%s", want, s)
		}
	}
}

func TestCLI_CleanToFile(t *testing.T) {
	home := tempHome(t)
	in := writeHorses(t, home)
	out := filepath.Join(home, "cleaned.csv")

	runCLI(t, "clean", in, "-o", out)
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read cleaned: %v", err)
	}
	header := strings.SplitN(string(b), "\n", 2)[0]
	for _, dropped := range []string{"Hood", "Eyecover", "TongueStrap"} {
		if strings.Contains(header, dropped) {
			t.Fatalf("column %s should be dropped: %s", dropped, header)
		}
	}
	if !strings.Contains(header, "MeetingDate") {
		t.Fatalf("MeetingDate missing: %s", header)
	}
}

func TestCLI_AggregateRuns(t *testing.T) {
	home := tempHome(t)
	in := writeHorses(t, home)
	runCLI(t, "aggregate", in)
	runCLI(t, "aggregate", in, "--json")
}

func TestCLI_MissingFileFails(t *testing.T) {
	home := tempHome(t)
	err := execute("render", filepath.Join(home, "absent.csv"), "--out", filepath.Join(home, "out"))
	if err == nil {
		t.Fatalf("expected error for missing input")
	}
	if !errors.Is(err, dataset.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestCLI_ConfigInitSetAndLoad(t *testing.T) {
	home := tempHome(t)
	runCLI(t, "config", "init")
	if _, err := os.Stat(filepath.Join(home, ".raceda", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if err := execute("config", "init"); err == nil {
		t.Fatalf("expected init to refuse overwriting without --force")
	}
	runCLI(t, "config", "init", "--force")

	runCLI(t, "config", "set", "histogram_bins", "12")
	runCLI(t, "config", "set", "drop_columns", "Hood, Eyecover")
	c, err := cfgpkg.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.HistogramBins != 12 {
		t.Fatalf("histogram_bins = %d", c.HistogramBins)
	}
	if len(c.DropColumns) != 2 || c.DropColumns[1] != "Eyecover" {
		t.Fatalf("drop_columns = %v", c.DropColumns)
	}

	if err := execute("config", "set", "histogram_bins", "0"); err == nil {
		t.Fatalf("expected validation error for histogram_bins=0")
	}
	if err := execute("config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	runCLI(t, "config", "show")
}

func TestCLI_ProfileBatch(t *testing.T) {
	home := tempHome(t)
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		writeHorses(t, d)
	}
	out := filepath.Join(home, "profiles")
	runCLI(t, "profile-batch", filepath.Join(home, "d*", "Horses.csv"), "--out", out, "-q")

	for _, name := range []string{"Horses.profile.md", "Horses-2.profile.md"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if err := execute("profile-batch", filepath.Join(home, "nothing*.csv"), "--out", out); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}
