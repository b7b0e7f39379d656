package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/raceda/internal/utils"
)

var cleanOutputPath string

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Drop empty columns, coerce dates and prices, and write the cleaned CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(cmd)
		if err != nil {
			return err
		}
		t, err := r.Load(args[0])
		if err != nil {
			return err
		}
		out, rep := r.Clean(t)

		if cleanOutputPath == "" {
			return out.WriteCSV(os.Stdout)
		}
		if err := utils.WriteFileWith(cleanOutputPath, out.WriteCSV); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("✓ Wrote %d rows x %d columns to %s\n", out.Rows(), out.Cols(), cleanOutputPath)
		fmt.Printf("  dropped: %s\n", joinOrNone(rep.Dropped))
		if rep.DateFailures > 0 {
			fmt.Printf("⚠ %d %s values could not be parsed and are now missing\n", rep.DateFailures, rep.DateColumn)
		}
		for col, n := range rep.NumericFailures {
			fmt.Printf("⚠ %d %s values could not be parsed and are now missing\n", n, col)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	addDataFlags(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "path to write the cleaned CSV (stdout if omitted)")
}
