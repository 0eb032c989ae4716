package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codedump/pkg/dump"
	"codedump/pkg/ignore"
	"codedump/pkg/logging"
	"codedump/pkg/version"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	appName   = "codedump"
	envPrefix = "CODEDUMP"
)

// NewRootCommand creates the root command, which performs the dump. Each call
// gets its own viper instance so commands never share configuration state.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Dump a project's source files into a single text file",
		Long: `codedump walks a project directory, keeps the text files whose extension is
included, and writes them into one file. Every file becomes a block with its
absolute path and byte size, optionally with line numbers, in case-insensitive
path order. The result is a single snapshot of a codebase for review or for
pasting into an LLM.

Options come from flags, CODEDUMP_* environment variables, and an optional
.codedump.yaml in the working directory, in that order of precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, v)
		},
	}

	defaults := dump.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.String("root", defaults.Root, "Project root to scan")
	flags.String("out", defaults.Output, "Output file path")
	flags.String("include", strings.Join(defaults.IncludeExts.Sorted(), ","), "Comma-separated file extensions to include")
	flags.String("exclude-dirs", strings.Join(defaults.ExcludeDirs.Sorted(), ","), "Comma-separated directory names to skip at any depth")
	flags.String("exclude-files", "", "Comma-separated file names to skip in addition to lock files")
	flags.Bool("linenumbers", false, "Prefix every line with its line number")
	flags.String("ignore-file", "", "Read gitignore-style patterns from this file in the root")
	flags.Bool("gitignore", false, "Honour .gitignore files and .git/info/exclude")
	flags.Int64("max-size", 0, "Skip files larger than this many bytes (0 = no limit)")
	flags.Bool("tree", false, "Write a tree of the dumped files before the file blocks")
	flags.String("report", "", "Write a YAML report of written and skipped files to this path")
	flags.BoolP("verbose", "v", false, "Enable debug logging and per-reason skip counts")
	flags.String("config", "", "Config file (default: .codedump.yaml in the working directory)")

	cmd.AddCommand(newConfigCommand(v))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// initConfig layers flags, environment and the config file into v, then
// sets up logging.
func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return &dump.ConfigError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
		}
	} else {
		v.SetConfigName("." + appName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return &dump.ConfigError{Path: v.ConfigFileUsed(), Err: fmt.Errorf("failed to read config file: %w", err)}
			}
		}
	}

	if _, err := logging.Setup(v.GetBool("verbose"), appName, version.Get().Version); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// buildConfig turns the merged settings into a dump configuration with
// absolute, symlink-resolved root, output and report paths.
func buildConfig(v *viper.Viper) (dump.Config, error) {
	cfg := dump.DefaultConfig()
	cfg.IncludeExts = dump.NormalizeExtensions(listValue(v, "include"))
	cfg.ExcludeDirs = dump.ParseNames(listValue(v, "exclude-dirs"))
	cfg.ExcludeFiles = dump.ParseNames(listValue(v, "exclude-files"))
	cfg.LineNumbers = v.GetBool("linenumbers")
	cfg.Ignore = ignore.Options{
		File:      v.GetString("ignore-file"),
		Gitignore: v.GetBool("gitignore"),
	}
	cfg.MaxFileSize = v.GetInt64("max-size")
	cfg.Tree = v.GetBool("tree")

	out := v.GetString("out")
	if strings.TrimSpace(out) == "" {
		return cfg, &dump.ConfigError{Path: out, Err: dump.ErrEmptyOutput}
	}

	report, err := reportPath(v)
	if err != nil {
		return cfg, err
	}
	if report != "" {
		cfg.OwnFiles = dump.NewSet(report)
	}

	if cfg.Root, err = resolvePath(v.GetString("root")); err != nil {
		return cfg, &dump.ConfigError{Path: v.GetString("root"), Err: err}
	}
	if cfg.Output, err = resolvePath(out); err != nil {
		return cfg, &dump.ConfigError{Path: out, Err: err}
	}
	return cfg, nil
}

// reportPath returns the resolved --report path, or "" when no report is wanted.
func reportPath(v *viper.Viper) (string, error) {
	report := v.GetString("report")
	if strings.TrimSpace(report) == "" {
		return "", nil
	}
	resolved, err := resolvePath(report)
	if err != nil {
		return "", &dump.ConfigError{Path: report, Err: err}
	}
	return resolved, nil
}

// listValue reads a list option given either as a comma-separated string or
// as a list in the config file.
func listValue(v *viper.Viper, key string) []string {
	switch value := v.Get(key).(type) {
	case []interface{}:
		items := make([]string, 0, len(value))
		for _, item := range value {
			items = append(items, fmt.Sprint(item))
		}
		return items
	case []string:
		return value
	default:
		return dump.SplitList(v.GetString(key))
	}
}

// resolvePath makes p absolute and resolves symlinks as far as the path
// exists, so a not yet created output still resolves through its directory.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs)), nil
	}
	return abs, nil
}

func runDump(cmd *cobra.Command, v *viper.Viper) error {
	logger := logging.Logger

	cfg, err := buildConfig(v)
	if err != nil {
		return err
	}

	fsys := osfs.New("/")
	if err := cfg.Validate(fsys); err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.info("Root", cfg.Root)
	p.info("Out", cfg.Output)
	p.info("Include", strings.Join(cfg.IncludeExts.Sorted(), ", "))
	p.info("Exclude dirs", strings.Join(cfg.ExcludeDirs.Sorted(), ", "))

	lock := newOutputLock(cfg.Output)
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release output lock", zap.Error(err))
		}
	}()

	result, err := dump.Run(cfg, fsys, logger)
	if err != nil {
		return err
	}

	p.done(result.Written(), result.Output)
	if v.GetBool("verbose") {
		p.skips(result)
	}

	if report, _ := reportPath(v); report != "" {
		if err := writeReport(report, result); err != nil {
			return err
		}
		p.info("Report", report)
	}
	return nil
}

// printer writes the human-readable run summary, colorized on terminals.
type printer struct {
	w     io.Writer
	label *color.Color
	ok    *color.Color
	muted *color.Color
}

func newPrinter(w io.Writer) *printer {
	p := &printer{
		w:     w,
		label: color.New(color.FgCyan, color.Bold),
		ok:    color.New(color.FgGreen),
		muted: color.New(color.FgHiBlack),
	}
	if !isTerminal(w) {
		p.label.DisableColor()
		p.ok.DisableColor()
		p.muted.DisableColor()
	}
	return p
}

func (p *printer) info(label, value string) {
	p.label.Fprintf(p.w, "%s:", label)
	fmt.Fprintf(p.w, " %s\n", value)
}

func (p *printer) done(written int, output string) {
	p.ok.Fprintf(p.w, "Done. %d file(s) written to %s\n", written, output)
}

func (p *printer) skips(result *dump.Result) {
	counts := result.SkipCounts()
	fmt.Fprintf(p.w, "Candidates: %d, skipped: %d\n", result.Candidates, len(result.Skipped))
	for _, reason := range dump.SkipReasons {
		if n := counts[reason]; n > 0 {
			p.muted.Fprintf(p.w, "  %-11s %d\n", string(reason)+":", n)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
