package repl

import (
	"sort"
	"strings"
)

// builtins are handled by the REPL itself.
var builtins = []string{"exit", "quit", "help", "history"}

// Completer matches command paths such as "profile use".
type Completer struct {
	commands []string
	roots    map[string]bool
}

// NewCompleter creates a completer for the given command paths. Built-in
// commands are always included.
func NewCompleter(commands []string) *Completer {
	c := &Completer{roots: make(map[string]bool)}
	seen := make(map[string]bool)
	for _, cmd := range append(append([]string{}, commands...), builtins...) {
		cmd = strings.Join(strings.Fields(cmd), " ")
		if cmd == "" || seen[cmd] {
			continue
		}
		seen[cmd] = true
		c.commands = append(c.commands, cmd)
		root, _, _ := strings.Cut(cmd, " ")
		c.roots[root] = true
	}
	sort.Strings(c.commands)
	return c
}

// Complete returns the command paths starting with prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether name is a top-level command.
func (c *Completer) Known(name string) bool {
	return c.roots[name]
}
