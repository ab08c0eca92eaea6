package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meetd2005/Forge-Frontend/internal/routes"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route classification tables",
		Run: func(cmd *cobra.Command, args []string) {
			printTable("protected", routes.ProtectedRoutes)
			printTable("auth-only", routes.AuthRoutes)
			printTable("public", routes.PublicRoutes)
			printTable("api user-context", routes.APIUserRoutes)
		},
	}
}

func printTable(name string, patterns []string) {
	fmt.Printf("%s:\n", name)
	for _, p := range patterns {
		fmt.Printf("  %s\n", p)
	}
	fmt.Println()
}
