package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the contactkeeper application
var rootCmd = &cobra.Command{
	Use:   "contactkeeper",
	Short: "Manages Google Contacts for AI assistants",
	Long: `contactkeeper is an MCP (Model Context Protocol) server that lets AI
assistants search, read, update, and delete Google Contacts, list
today's birthdays, and move contacts in bulk as CSV or vCard files
through the host platform's storage.

Credentials and file storage are delegated to the host platform; the
server itself keeps no local state.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "contactkeeper version %s\n" .Version}}`)

	// If no subcommand is provided, run the MCP server by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd())
}
