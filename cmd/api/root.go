package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	envFile string
	addr    string
}

func newRootCmd() *cobra.Command {
	opts := &serveOptions{}

	rootCmd := &cobra.Command{
		Use:          "asistente-hogar",
		Short:        "Home repair assistant backend",
		Long:         "asistente-hogar serves the chat relay, session store and nearby hardware store lookup used by the home repair assistant front end.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&opts.addr, "addr", "", "listen address, overrides PORT")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newServeCmd(opts *serveOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
