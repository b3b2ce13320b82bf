package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

const prefix = "cmd "

// ErrMissingSubcommand is returned by Execute for an empty argument list.
var ErrMissingSubcommand = errors.New("missing subcommand")

// Command is a subcommand with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse and can read flag state.
type Command struct {
	Name    string
	Summary string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
// Lines may arrive from the render loop and the remote control at the same time, so
// Execute runs one command at a time.
type Registry struct {
	run  sync.Mutex
	mu   sync.Mutex
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds a subcommand. name is the first token after "cmd" (e.g. "reset").
// fs may be nil for commands without flags; its output is discarded so parse errors
// are only reported through the returned error.
func (r *Registry) Register(name, summary string, fs *flag.FlagSet, run func() error) {
	if fs == nil {
		fs = flag.NewFlagSet(name, flag.ContinueOnError)
	}
	fs.SetOutput(io.Discard)
	r.mu.Lock()
	r.cmds[name] = &Command{Name: name, Summary: summary, FlagSet: fs, Run: run}
	r.mu.Unlock()
}

// Parse interprets line as a console line. If line starts with "cmd " (case-sensitive),
// the rest is tokenized by spaces and returned with ok true. Otherwise nil, false.
func Parse(line string) (args []string, ok bool) {
	if !strings.HasPrefix(line, prefix) {
		return nil, false
	}
	rest := strings.TrimSpace(line[len(prefix):])
	if rest == "" {
		return nil, true
	}
	return strings.Fields(rest), true
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional arguments.
// Returns an error for unknown command, parse error, or from Run().
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return ErrMissingSubcommand
	}
	r.mu.Lock()
	cmd, ok := r.cmds[args[0]]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	r.run.Lock()
	defer r.run.Unlock()
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return cmd.Run()
}

// Help returns one "name - summary" line per command, sorted by name.
func (r *Registry) Help() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.cmds))
	for name, c := range r.cmds {
		out = append(out, name+" - "+c.Summary)
	}
	sort.Strings(out)
	return out
}
