package shell

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Command is one slash command.
type Command interface {
	Name() string
	Aliases() []string
	Usage() string
	Summary() string
	Execute(ctx context.Context, sh *Shell, args []string) error
}

type command struct {
	name    string
	aliases []string
	usage   string
	summary string
	run     func(ctx context.Context, sh *Shell, args []string) error
}

func (c *command) Name() string      { return c.name }
func (c *command) Aliases() []string { return c.aliases }
func (c *command) Usage() string     { return c.usage }
func (c *command) Summary() string   { return c.summary }

func (c *command) Execute(ctx context.Context, sh *Shell, args []string) error {
	return c.run(ctx, sh, args)
}

// Registry maps command names and aliases to commands.
type Registry struct {
	commands []Command
	lookup   map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{lookup: make(map[string]Command)}
}

// Register adds c under its name and aliases. A later registration of
// the same name replaces the earlier one.
func (r *Registry) Register(c Command) {
	r.commands = append(r.commands, c)
	r.lookup[c.Name()] = c
	for _, alias := range c.Aliases() {
		r.lookup[alias] = c
	}
}

// Lookup finds a command by name or alias, with or without the slash.
func (r *Registry) Lookup(name string) (Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	c, ok := r.lookup[name]
	return c, ok
}

// WriteHelp prints one line per command.
func (r *Registry) WriteHelp(w io.Writer) {
	for _, c := range r.commands {
		name := c.Name()
		if aliases := c.Aliases(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(w, "    %-20s %-24s - %s\n", name, c.Usage(), c.Summary())
	}
}
