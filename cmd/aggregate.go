package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/raceda/internal/utils"
)

var aggJSON bool

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <file>",
	Short: "Print win/loss mix, races over time, wins per horse and wins by weather x track",
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
		cleaned, _ := r.Clean(t)
		agg := r.Aggregate(cleaned)
		if aggJSON {
			b, err := utils.PrettyJSON(agg)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		writeAggregates(os.Stdout, agg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	addDataFlags(aggregateCmd)
	aggregateCmd.Flags().BoolVar(&aggJSON, "json", false, "print aggregates as JSON")
}
