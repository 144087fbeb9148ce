package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPrompt is shown when no prompt function is configured.
const DefaultPrompt = "maxedu> "

// Executor runs one command line, already split into arguments.
type Executor func(ctx context.Context, args []string) error

// ErrExit may be returned by an Executor to end the loop.
var ErrExit = errors.New("repl: exit")

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    func() string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets a function evaluated before every line, so the prompt can
// reflect the session.
func WithPrompt(fn func() string) Option {
	return func(r *REPL) {
		r.prompt = fn
	}
}

// WithCompleter sets the command list used by help and suggestions.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) {
		r.completer = c
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a REPL that runs lines through exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    func() string { return DefaultPrompt },
		exec:      exec,
		completer: NewCompleter(nil),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until exit, end of input or ctx is done. Command errors
// are printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(r.output, r.prompt())

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		atEOF := err != nil

		line = strings.TrimSpace(line)
		if line == "" {
			if atEOF {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}
		r.history.Add(line)

		if done := r.eval(ctx, line); done || atEOF {
			return nil
		}
	}
}

// eval runs one line and reports whether the loop should end.
func (r *REPL) eval(ctx context.Context, line string) bool {
	args, err := Split(line)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "help", "?":
		if len(args) > 1 || r.exec == nil {
			r.printMatches(strings.Join(args[1:], " "))
			return false
		}
		args = []string{"help"}
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return false
	}

	if r.exec == nil {
		return false
	}
	if err := r.exec(ctx, args); err != nil {
		if errors.Is(err, ErrExit) {
			return true
		}
		fmt.Fprintf(r.output, "Error: %v\n", err)
		if !r.completer.Known(args[0]) {
			if s := r.completer.Complete(args[0]); len(s) > 0 {
				fmt.Fprintf(r.output, "Did you mean: %s\n", strings.Join(s, ", "))
			}
		}
	}
	return false
}

func (r *REPL) printMatches(prefix string) {
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		fmt.Fprintf(r.output, "No commands match %q\n", prefix)
		return
	}
	for _, m := range matches {
		fmt.Fprintf(r.output, "  %s\n", m)
	}
}
