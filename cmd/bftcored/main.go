// Package main is the process entry point: a control HTTP server and
// nothing else. Every other setting — identity, peers, protocol, crypto
// parameters — arrives later over POST /config.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ahwlsqja/bft-runtime-core/control"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var bindAddr string

	cmd := &cobra.Command{
		Use:   "bftcored",
		Short: "Runtime core control process for a protocol built on this runtime",
		Long: "bftcored starts an empty control HTTP server on bindAddr. It accepts no " +
			"configuration beyond that address; identity, peers, protocol selection, " +
			"and crypto parameters are installed afterward via POST /config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(bindAddr)
		},
	}

	cmd.Flags().StringVar(&bindAddr, "bind", "0.0.0.0:26780", "control HTTP server bind address")
	return cmd
}

func run(bindAddr string) error {
	srv := control.New(bindAddr)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("bftcored: start control server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("bftcored: shutting down")
	if err := srv.Close(); err != nil {
		return fmt.Errorf("bftcored: shutdown: %w", err)
	}
	return nil
}
