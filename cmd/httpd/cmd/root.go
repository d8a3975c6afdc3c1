package cmd

import (
	"os"

	"github.com/raphaelreyna/httpd"
	"github.com/spf13/cobra"
)

var version string

var quiet bool

var RootCmd = &cobra.Command{
	Use:     "httpd [flags] port",
	Version: version,
	Short:   "A tiny HTTP/1.0 server for static files and cgi-like programs.",
	Long: `Serve files from the current directory over HTTP/1.0.
Requests for /cgi-like/NAME?a&b run the program NAME from ./cgi-like with
arguments a and b, and respond with whatever it printed to stdout.
Every response is sent as text/html.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func SetFlags() {
	RootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		`Don't show error messages.`,
	)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := httpd.ParsePort(args[0])
	if err != nil {
		return err
	}
	cfg.Quiet = quiet

	// Past this point failures are not usage errors.
	cmd.SilenceUsage = true
	return serve(cmd, cfg)
}

func Execute() {
	SetFlags()
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
