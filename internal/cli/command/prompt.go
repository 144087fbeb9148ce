package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// prompter reads answers from the app's input. One prompter must serve
// all prompts of a command so buffered input is not lost between them.
type prompter struct {
	c      *cli.Context
	reader *bufio.Reader
}

func newPrompter(c *cli.Context) *prompter {
	return &prompter{c: c, reader: bufio.NewReader(c.App.Reader)}
}

// Line prints label and reads one line.
func (p *prompter) Line(label string) (string, error) {
	fmt.Fprint(errWriter(p.c), label)
	line, err := p.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret reads a line without echo when the input is a terminal.
func (p *prompter) Secret(label string) (string, error) {
	f, ok := p.c.App.Reader.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(label)
	}

	fmt.Fprint(errWriter(p.c), label)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(errWriter(p.c))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

// flagOrSecret returns the flag value, prompting without echo when unset.
func (p *prompter) flagOrSecret(name, label string) (string, error) {
	if v := p.c.String(name); v != "" {
		return v, nil
	}
	return p.Secret(label)
}
