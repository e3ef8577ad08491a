package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/krivenko/slurm-factory/config"
	"github.com/krivenko/slurm-factory/internal/version"
	"github.com/krivenko/slurm-factory/sbatch"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show slurm-factory and scheduler version information",
	Long:  `Display build information for the slurm-factory binary and, when the sbatch executable is reachable, the SLURM version it reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		info := version.Get()

		if jsonOutput {
			output, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting JSON: %v\n", err)
				return
			}
			fmt.Println(string(output))
			return
		}

		fmt.Println(info.String())
		fmt.Printf("Platform: %s\n", info.Platform)
		fmt.Printf("Go: %s\n", info.GoVersion)

		// Scheduler version is best-effort: sbatch may not be installed
		if cfg, err := config.Load(); err == nil {
			if client, err := sbatch.NewFromConfig(cfg); err == nil {
				if sv, err := client.Version(cmd.Context()); err == nil {
					pterm.Info.Printfln("Scheduler: %s", sv)
				}
			}
		}
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
