package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RenderCmd builds a job description from flags and prints the script
// without submitting it.
var RenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a batch script without submitting it",
	Long: `Build a job description from the given flags and print the generated
batch script to stdout. The script body is read from --body (stdin by
default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := jobFromFlags(cmd)
		if err != nil {
			return err
		}
		script, err := j.Dump()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), script)
		return nil
	},
}

func init() {
	addJobFlags(RenderCmd)
}
