package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/config"
	"github.com/harshitprakash/max-education-software-sub000/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Client configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output format: yaml, json", Value: "yaml"}},
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPathAction,
			},
			{
				Name:      "set",
				Usage:     "Set a value in the config file",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration",
				Action: configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format, false).Format(outWriter(c), cliConfig(c))
}

func configPathAction(c *cli.Context) error {
	fmt.Fprintln(outWriter(c), configPath(c))
	return nil
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: maxedu config set KEY VALUE")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	if _, err := config.Set(configPath(c), key, value); err != nil {
		return err
	}
	fmt.Fprintf(outWriter(c), "%s updated in %s\n", key, configPath(c))
	return reloadConfig(c)
}

// configValidate re-reads the file so the check does not depend on the
// flags of this invocation.
func configValidate(c *cli.Context) error {
	cfg, err := config.Load(configPath(c), nil)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("configuration is invalid:\n%w", err)
	}
	fmt.Fprintln(outWriter(c), "Configuration is valid.")
	return nil
}
