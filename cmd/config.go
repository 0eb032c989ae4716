package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// effectiveConfig is the merged configuration as printed by `codedump config`.
// Its keys match the config file keys, so the output is a valid .codedump.yaml.
type effectiveConfig struct {
	Root         string   `yaml:"root"`
	Out          string   `yaml:"out"`
	Include      []string `yaml:"include"`
	ExcludeDirs  []string `yaml:"exclude-dirs"`
	ExcludeFiles []string `yaml:"exclude-files"`
	LineNumbers  bool     `yaml:"linenumbers"`
	IgnoreFile   string   `yaml:"ignore-file,omitempty"`
	Gitignore    bool     `yaml:"gitignore"`
	MaxSize      int64    `yaml:"max-size"`
	Tree         bool     `yaml:"tree"`
	Report       string   `yaml:"report,omitempty"`
}

func newConfigCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration a dump would run with, after merging flags,
CODEDUMP_* environment variables, the config file and defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(v)
			if err != nil {
				return err
			}

			report, err := reportPath(v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if used := v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(out, "# config file: %s\n", used)
			}

			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(effectiveConfig{
				Root:         cfg.Root,
				Out:          cfg.Output,
				Include:      cfg.IncludeExts.Sorted(),
				ExcludeDirs:  cfg.ExcludeDirs.Sorted(),
				ExcludeFiles: cfg.ExcludeFiles.Sorted(),
				LineNumbers:  cfg.LineNumbers,
				IgnoreFile:   cfg.Ignore.File,
				Gitignore:    cfg.Ignore.Gitignore,
				MaxSize:      cfg.MaxFileSize,
				Tree:         cfg.Tree,
				Report:       report,
			}); err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			return enc.Close()
		},
	}
}
