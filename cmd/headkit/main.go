package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	herrors "github.com/vango-dev/headkit/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌─┐┌┬┐┬┌─┬┌┬┐
  ╠═╣├┤ ├─┤ ││├┴┐│ │
  ╩ ╩└─┘┴ ┴─┴┘┴ ┴┴ ┴
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		herrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by all commands.
type globalOptions struct {
	configDir string
	verbose   bool
	noColor   bool
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "headkit",
		Short: "Render PrimeFaces page heads",
		Long: `Headkit renders the <head> of PrimeFaces pages.

It emits the theme stylesheet, core resources, client side
settings and deferred initialization scripts, either once from
the command line or per request from a development server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor || os.Getenv("NO_COLOR") != "" {
				herrors.DisableColors()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configDir, "config", "c", "", "Directory holding headkit.json or headkit.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored error output")

	cmd.AddCommand(
		renderCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)

	return cmd
}

// newLogger returns a text logger writing to w.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printBanner prints the headkit ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
