package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gateway",
		Short: "Edge gateway for the Forge blogging platform",
		Long: `The Forge gateway fronts the web application and owns the
cookie-based session lifecycle: silent access-token refresh, route
protection, and user-context header injection for API calls.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		routesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
