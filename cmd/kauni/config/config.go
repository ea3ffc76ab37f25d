// Package configcmder provides the config command for managing persistent
// kauni configuration stored in the .kauni/ directory.
package configcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/kauni/pkg/cliui"
	"github.com/papercomputeco/kauni/pkg/config"
)

const configLongDesc string = `Manage persistent kauni configuration.

Configuration is stored as config.toml in the .kauni/ directory and provides
default values for command flags. CLI flags and KAUNI_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML sections. Run
"kauni config list" to see every key with its current value.

Examples:
  kauni config init --preset local
  kauni config set llm.provider anthropic
  kauni config get store.target
  kauni config list`

const configShortDesc string = "Manage persistent kauni configuration"

type configCommander struct {
	configDir string
	out       io.Writer
}

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func commanderFor(cmd *cobra.Command) *configCommander {
	c := &configCommander{out: cmd.OutOrStdout()}
	c.configDir, _ = cmd.Flags().GetString("config-dir")
	return c
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func checkKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

// open loads the configer and prints which file is in use.
func (c *configCommander) open() (*config.Configer, error) {
	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(c.out, "\n  %s %s\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render(target))
	} else {
		fmt.Fprintf(c.out, "\n  %s\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
	return cfger, nil
}

func (c *configCommander) printValue(key, value string, width int) {
	rendered := cliui.ValueStyle.Render(value)
	if value == "" {
		rendered = cliui.DimStyle.Render("<not set>")
	}
	fmt.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-*s", width, key)), rendered)
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Print the value of one configuration key.

Examples:
  kauni config get llm.provider
  kauni config get embedding.model`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commanderFor(cmd).get(args[0])
		},
	}
}

func (c *configCommander) get(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	cfger, err := c.open()
	if err != nil {
		return err
	}

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	c.printValue(key, value, len(key))
	fmt.Fprintln(c.out)
	return nil
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Write one configuration key to config.toml.

Values are checked against the key's type: dimensions and counts must be
unsigned integers, kto.rate a number and rag.timeout a Go duration.

Examples:
  kauni config set llm.provider anthropic
  kauni config set store.target postgres://localhost:5432/kauni
  kauni config set rag.timeout 30s`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commanderFor(cmd).set(args[0], args[1])
		},
	}
}

func (c *configCommander) set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	cfger, err := c.open()
	if err != nil {
		return err
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Set %s = %s\n\n",
		cliui.SuccessMark, cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(value))
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long:  "Print every configuration key, grouped by TOML section, with its current value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commanderFor(cmd).list()
		},
	}
}

func (c *configCommander) list() error {
	cfger, err := c.open()
	if err != nil {
		return err
	}

	keys := config.ValidConfigKeys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	section := ""
	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}
		if s, _, _ := strings.Cut(key, "."); s != section {
			section = s
			fmt.Fprintf(c.out, "\n  %s\n", cliui.HeaderStyle.Render("["+section+"]"))
		}
		c.printValue(key, value, width)
	}
	fmt.Fprintln(c.out)
	return nil
}

func newInitCmd() *cobra.Command {
	var (
		preset string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config.toml",
		Long: `Write a config.toml populated with defaults or a deployment preset.

Without --config-dir the file is written to ./.kauni/config.toml.

Presets: ` + strings.Join(config.ValidPresetNames(), ", ") + `

Examples:
  kauni config init
  kauni config init --preset qdrant
  kauni config init --preset local --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commanderFor(cmd).initFile(preset, force)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Deployment preset to start from")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.toml")
	_ = cmd.RegisterFlagCompletionFunc("preset", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *configCommander) initFile(preset string, force bool) error {
	cfg := config.NewDefaultConfig()
	if preset != "" {
		var err error
		if cfg, err = config.PresetConfig(preset); err != nil {
			return err
		}
	}

	dir := c.configDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, ".kauni")
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Wrote %s\n\n", cliui.SuccessMark, cliui.DimStyle.Render(target))
	return nil
}
