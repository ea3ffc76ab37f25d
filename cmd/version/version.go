// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kauni/pkg/cliui"
	"github.com/papercomputeco/kauni/pkg/utils"
)

type VersionCommander struct{}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of the kauni CLI and the Go runtime it was built with",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	return cmd
}

func (c *VersionCommander) run(w io.Writer) error {
	fmt.Fprintf(w, "%s %s\n%s %s\n%s %s\n%s %s\n",
		cliui.KeyStyle.Render("Version: "), utils.Version,
		cliui.KeyStyle.Render("Sha:     "), utils.Sha,
		cliui.KeyStyle.Render("Built at:"), utils.Buildtime,
		cliui.KeyStyle.Render("Go:      "), runtime.Version(),
	)
	return nil
}
