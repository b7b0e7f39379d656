package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/raceda/internal/manifest"
	"github.com/KaramelBytes/raceda/internal/pipeline"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Run the full pipeline and write charts, profile and manifest to the output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], false)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Like render, and also write an XLSX workbook of the profile and aggregates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], true)
	},
}

func runPipeline(cmd *cobra.Command, input string, workbook bool) error {
	c, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	opt := pipeline.FromConfig(c)
	opt.Load.Sheet = flagSheet
	opt.Workbook = workbook
	res, m, err := pipeline.New(logger, opt).Run(input)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s: %d rows, %d columns (%d after cleaning)\n", res.Raw.Name, res.Raw.Rows(), res.Raw.Cols(), res.Cleaned.Cols())
	if len(m.Empty) > 0 {
		fmt.Printf("⚠ Empty aggregates: %s\n", joinOrNone(m.Empty))
	}
	for _, a := range m.Artifacts {
		fmt.Printf("  %-22s %s\n", a.Name, m.Path(a.File))
	}
	fmt.Printf("✓ Wrote %s (run %s)\n", m.Path(manifest.FileName), m.ID)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{renderCmd, runCmd} {
		rootCmd.AddCommand(c)
		addDataFlags(c)
		addRenderFlags(c)
	}
}
