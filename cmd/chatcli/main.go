package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	execute()
}

func execute() {
	rootCmd := &cobra.Command{
		Use:   "chatcli",
		Short: "Console client for the job engine API",
	}

	rootCmd.PersistentFlags().String("server", envOr("JOB_ENGINE_URL", "http://localhost:8000"), "API base URL")
	rootCmd.PersistentFlags().StringP("session", "s", "default", "session id")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newEventsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func clientFromFlags(cmd *cobra.Command) (*apiClient, string) {
	server, _ := cmd.Flags().GetString("server")
	session, _ := cmd.Flags().GetString("session")
	return newAPIClient(server), session
}
