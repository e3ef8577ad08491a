// Package config loads slurm-factory configuration with Viper.
//
// Precedence, lowest to highest: built-in defaults, a slurm-factory.toml
// found by walking up from the working directory, SLURM_FACTORY_* environment
// variables.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config is the slurm-factory configuration tree.
type Config struct {
	Shell  ShellConfig  `mapstructure:"shell"`
	Sbatch SbatchConfig `mapstructure:"sbatch"`
	Log    LogConfig    `mapstructure:"log"`
}

// ShellConfig selects the interpreter for generated scripts.
type ShellConfig struct {
	Path string `mapstructure:"path"` // #! line of generated scripts
}

// SbatchConfig configures the external submission executable.
type SbatchConfig struct {
	Path      string `mapstructure:"path"`       // empty = discover on $PATH when needed
	ExtraArgs string `mapstructure:"extra_args"` // appended to every invocation, shell-quoted
}

// LogConfig configures the global logger.
type LogConfig struct {
	JSON bool `mapstructure:"json"` // structured JSON instead of console output
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	v.SetDefault("shell.path", shell)
	v.SetDefault("sbatch.path", "") // locate lazily
	v.SetDefault("sbatch.extra_args", "")
	v.SetDefault("log.json", false)
}
