package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/raceda/internal/analysis"
	"github.com/KaramelBytes/raceda/internal/utils"
)

var pbQuiet bool

var profileBatchCmd = &cobra.Command{
	Use:   "profile-batch <files...>",
	Short: "Profile several race tables (globs allowed) and write one Markdown profile per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		r, err := newRunner(cmd)
		if err != nil {
			return err
		}
		outDir := r.Options().OutputDir
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}

		used := map[string]int{}
		total := len(files)
		for i, path := range files {
			if !pbQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := r.Load(path)
			if err != nil {
				return err
			}
			md := analysis.Profile(t, r.Options().Profile).Markdown()

			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			// same basename in different directories
			if n := used[base]; n > 0 {
				used[base] = n + 1
				base = fmt.Sprintf("%s-%d", base, n+1)
			} else {
				used[base] = 1
			}
			outFile := filepath.Join(outDir, base+".profile.md")
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write profile: %w", err)
			}
			if !pbQuiet {
				fmt.Printf("✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and returns a
// sorted list without duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(profileBatchCmd)
	addDataFlags(profileBatchCmd)
	profileBatchCmd.Flags().StringVar(&flagOutDir, "out", "", "output directory (overrides config output_dir)")
	profileBatchCmd.Flags().IntVar(&flagSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileBatchCmd.Flags().BoolVarP(&pbQuiet, "quiet", "q", false, "suppress progress output")
}
