package command

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/output"
)

// outputFlags are added to every command that prints data.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml (default from config)",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// render writes data in the format selected by --output, falling back to
// the configured default.
func render(c *cli.Context, data any) error {
	name := c.String("output")
	if name == "" {
		name = cliConfig(c).Output
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, c.Bool("wide")).Format(outWriter(c), data)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// startSpinner shows a spinner on stderr when it is a terminal. Otherwise
// it returns a nil spinner, which draws nothing.
func startSpinner(c *cli.Context, message string) *output.Spinner {
	if !isTerminal(errWriter(c)) {
		return nil
	}
	s := output.NewSpinner(errWriter(c), message)
	s.Start()
	return s
}
