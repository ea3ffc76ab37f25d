// Package kaunicmder
package kaunicmder

import (
	"os"

	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/kauni/cmd/kauni/auth"
	chatcmder "github.com/papercomputeco/kauni/cmd/kauni/chat"
	configcmder "github.com/papercomputeco/kauni/cmd/kauni/config"
	ingestcmder "github.com/papercomputeco/kauni/cmd/kauni/ingest"
	searchcmder "github.com/papercomputeco/kauni/cmd/kauni/search"
	servecmder "github.com/papercomputeco/kauni/cmd/kauni/serve"
	versioncmder "github.com/papercomputeco/kauni/cmd/version"
	"github.com/papercomputeco/kauni/pkg/cliui"
)

const kauniLongDesc string = `Kauni is a retrieval-augmented tourism guide for Daejeon.

Run the server and load documents using:
  kauni serve                 Run the API and MCP server
  kauni ingest fs <path>      Index local text and markdown files
  kauni ingest kto            Index KTO open-data tourism records
  kauni chat                  Ask the guide questions
  kauni search <query>        Search the document store`

const kauniShortDesc string = "Kauni - Daejeon tourism guide"

func NewKauniCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "kauni",
		Short:        kauniShortDesc,
		Long:         kauniLongDesc,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				cliui.DisableColor()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .kauni/ config directory")
	cmd.PersistentFlags().Bool("no-color", os.Getenv("NO_COLOR") != "", "Disable colored output")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
