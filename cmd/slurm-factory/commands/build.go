package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/krivenko/slurm-factory/config"
	"github.com/krivenko/slurm-factory/errors"
	"github.com/krivenko/slurm-factory/job"
)

// addJobFlags registers the shared job-description flags on a command.
func addJobFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("name", "", "Job name")
	flags.StringSlice("partition", nil, "Partition(s) to submit to")
	flags.Duration("time", 0, "Wall time limit (e.g. 90m, 2h30m)")
	flags.Int("ntasks", 0, "Number of tasks")
	flags.Int("cpus-per-task", 0, "CPUs per task")
	flags.Int("nodes", 0, "Minimum node count")
	flags.String("mem", "", "Memory per node (e.g. 4G)")
	flags.String("constraint", "", "Node feature constraint expression")
	flags.Bool("exclusive", false, "Request exclusive node access")
	flags.String("body", "-", "Script body file, or - for stdin")
}

// jobFromFlags assembles a job description from the shared flags.
func jobFromFlags(cmd *cobra.Command) (*job.Job, error) {
	flags := cmd.Flags()

	name, _ := flags.GetString("name")
	j := job.New(name)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	j.SetShell(cfg.Shell.Path)

	if partitions, _ := flags.GetStringSlice("partition"); len(partitions) > 0 {
		if err := j.SetPartitions(partitions...); err != nil {
			return nil, err
		}
	}
	if d, _ := flags.GetDuration("time"); d > 0 {
		if err := j.SetWallTime(d); err != nil {
			return nil, err
		}
	}
	if n, _ := flags.GetInt("ntasks"); n != 0 {
		if err := j.SetNTasks(n); err != nil {
			return nil, err
		}
	}
	if n, _ := flags.GetInt("cpus-per-task"); n != 0 {
		if err := j.SetCPUsPerTask(n); err != nil {
			return nil, err
		}
	}
	if n, _ := flags.GetInt("nodes"); n != 0 {
		if err := j.SetMinNodes(n); err != nil {
			return nil, err
		}
	}
	if mem, _ := flags.GetString("mem"); mem != "" {
		if err := j.SetMemory(mem); err != nil {
			return nil, err
		}
	}
	if expr, _ := flags.GetString("constraint"); expr != "" {
		if err := j.SetConstraint(expr); err != nil {
			return nil, err
		}
	}
	if on, _ := flags.GetBool("exclusive"); on {
		if err := j.SetExclusive(true); err != nil {
			return nil, err
		}
	}

	body, err := readBody(cmd)
	if err != nil {
		return nil, err
	}
	j.SetBody(body)

	return j, nil
}

func readBody(cmd *cobra.Command) (string, error) {
	source, _ := cmd.Flags().GetString("body")
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "failed to read script body from stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read script body from %s", source)
	}
	return string(data), nil
}
