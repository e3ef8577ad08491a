package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/krivenko/slurm-factory/cmd/slurm-factory/commands"
	"github.com/krivenko/slurm-factory/config"
	"github.com/krivenko/slurm-factory/logger"
)

var rootCmd = &cobra.Command{
	Use:   "slurm-factory",
	Short: "slurm-factory - Build and submit SLURM batch scripts",
	Long: `slurm-factory builds SLURM batch-job scripts from validated option sets
and submits them through the sbatch executable.

Available commands:
  render  - Build a job description and print the generated script
  submit  - Build a job description and submit it to the scheduler
  version - Show build and scheduler version information

Examples:
  echo 'srun -n ${SLURM_NTASKS} pwd' | slurm-factory render --name hello --partition debug
  slurm-factory submit --name sweep --ntasks 64 --time 2h --body sweep.sh
  slurm-factory version`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.RenderCmd)
	rootCmd.AddCommand(commands.SubmitCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
