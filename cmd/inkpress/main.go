package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkpress/inkpress/internal/app"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "inkpress",
	Short: "Inkpress blog server",
	Long:  "Inkpress serves a public blog API and an authenticated admin panel backed by a relational database.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunServer(cmd.Context(), configPath)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate(cmd.Context(), configPath)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo content into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Seed(cmd.Context(), configPath)
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <email> <password> [display name]",
	Short: "Create the first admin account",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		displayName := ""
		if len(args) == 3 {
			displayName = args[2]
		}
		return app.CreateAdmin(cmd.Context(), configPath, args[0], args[1], displayName)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createAdminCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
