// Command archie runs the ArchMC Discord bot and its operator dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// The reporting time zone must resolve on hosts without zoneinfo.
	_ "time/tzdata"

	"github.com/Archie-bot-stack/Archie/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "archie",
		Short:         "Archie is a Discord bot for ArchMC player and server statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}

	root.AddCommand(newRunCommand(), newDashCommand(), newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.Info())
		},
	}
}
