package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/raphaelreyna/httpd"
	"github.com/spf13/cobra"
)

// serve binds the port, announces it and serves until SIGINT or SIGTERM.
func serve(cmd *cobra.Command, cfg *httpd.Config) error {
	s := httpd.NewServer(cfg)

	ln, err := s.Listen()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on port: %d\n", cfg.Port)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return s.Serve(ctx, ln)
}
