package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/krivenko/slurm-factory/config"
	"github.com/krivenko/slurm-factory/sbatch"
)

// SubmitCmd builds a job description from flags and submits it through the
// configured sbatch executable.
var SubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a batch script to the scheduler",
	Long: `Build a job description from the given flags and hand the generated
script to sbatch. Prints the handle the scheduler assigned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		j, err := jobFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client, err := sbatch.NewFromConfig(cfg)
		if err != nil {
			return err
		}

		handle, err := j.Submit(cmd.Context(), client)
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Submitted batch job %d", handle)
		return nil
	},
}

func init() {
	addJobFlags(SubmitCmd)
}
