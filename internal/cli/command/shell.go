package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive shell that keeps the session open",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not read or write the history file",
			},
		},
		Action: shell,
	}
}

func shell(c *cli.Context) error {
	if inShell(c) {
		return errors.New("already in the interactive shell")
	}

	// Restore the session once; every line reuses it.
	if _, err := GetRuntime(c); err != nil {
		return err
	}

	c.App.Metadata[metaInShell] = true
	defer delete(c.App.Metadata, metaInShell)

	historyFile := repl.DefaultHistoryFile()
	if c.Bool("no-history") {
		historyFile = ""
	}
	history := repl.NewHistory(historyFile)
	if err := history.Load(); err != nil {
		cliLogger(c).Debug("history not loaded", "error", err)
	}
	defer func() {
		if err := history.Save(); err != nil {
			cliLogger(c).Debug("history not saved", "error", err)
		}
	}()

	app := c.App
	exec := func(ctx context.Context, args []string) error {
		if err := app.RunContext(ctx, append([]string{app.Name}, args...)); err != nil {
			return errors.New(errorMessage(err))
		}
		return nil
	}

	fmt.Fprintf(outWriter(c), "maxedu %s interactive shell. Type 'help' for commands, 'exit' to quit.\n", app.Version)

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, outWriter(c)),
		repl.WithPrompt(func() string { return shellPrompt(c) }),
		repl.WithCompleter(repl.NewCompleter(commandPaths(app.Commands))),
		repl.WithHistory(history),
	)
	return r.Run(c.Context)
}

// shellPrompt shows the profile and, once logged in, the student.
func shellPrompt(c *cli.Context) string {
	rt, ok := c.App.Metadata[metaRuntime].(*Runtime)
	if !ok {
		return repl.DefaultPrompt
	}

	prompt := "maxedu"
	if rt.Profile != "" && rt.Profile != "default" {
		prompt += "(" + rt.Profile + ")"
	}
	if state := rt.Session.State(); state.IsAuthenticated {
		if name := state.User.DisplayName(); name != "" {
			prompt += "[" + name + "]"
		}
	}
	return prompt + "> "
}

// commandPaths lists every command and subcommand path, e.g. "profile use".
func commandPaths(cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		paths = append(paths, cmd.Name)
		for _, sub := range commandPaths(cmd.Subcommands) {
			paths = append(paths, cmd.Name+" "+sub)
		}
	}
	return paths
}
