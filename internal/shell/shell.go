package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/illarion/notevault/internal/core"
	"github.com/illarion/notevault/internal/notes"
)

const quitCommand = "/quit"

var errQuit = errors.New("quit")

// Options configures a Shell. Zero values pick stdin, stdout, the wall
// clock and a plain banner.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Now    func() time.Time
	Banner Banner
}

// Shell is the interactive UI of a session.
type Shell struct {
	in       io.Reader
	out      io.Writer
	now      func() time.Time
	banner   Banner
	registry *Registry

	lines <-chan string
	env   core.Env
}

// New creates a shell with the built-in command set.
func New(opts Options) *Shell {
	sh := &Shell{
		in:     opts.In,
		out:    opts.Out,
		now:    opts.Now,
		banner: opts.Banner,
	}
	if sh.in == nil {
		sh.in = os.Stdin
	}
	if sh.out == nil {
		sh.out = os.Stdout
	}
	if sh.now == nil {
		sh.now = time.Now
	}
	if sh.banner == nil {
		sh.banner = PlainBanner
	}
	sh.registry = builtins()
	return sh
}

// Registry returns the command registry.
func (sh *Shell) Registry() *Registry {
	return sh.registry
}

// Run reads commands until /quit, end of input or ctx cancellation.
func (sh *Shell) Run(ctx context.Context, env core.Env) error {
	done := make(chan struct{})
	defer close(done)

	sh.env = env
	sh.lines = readLines(sh.in, done)

	sh.banner(sh.out, "Welcome!")
	fmt.Fprintln(sh.out, "Use `/` commands to interact with the program, start with '/help' if you need")
	fmt.Fprintln(sh.out)

	for {
		line, err := sh.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := sh.dispatch(ctx, line); err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// readLines feeds trimmed input lines to the returned channel and closes
// it at end of input.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-done:
				return
			}
		}
	}()
	return lines
}

func (sh *Shell) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-sh.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// prompt prints msg and reads one answer.
func (sh *Shell) prompt(ctx context.Context, msg string) (string, error) {
	fmt.Fprintln(sh.out, msg)
	return sh.readLine(ctx)
}

// confirm asks a yes/no question; only "y" confirms.
func (sh *Shell) confirm(ctx context.Context, msg string) (bool, error) {
	answer, err := sh.prompt(ctx, msg+" (y/n)")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func (sh *Shell) dispatch(ctx context.Context, line string) error {
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return sh.appendTo(notes.LandingTitle, line)
	}

	fields := strings.Fields(line)
	cmd, ok := sh.registry.Lookup(fields[0])
	if !ok {
		fmt.Fprintln(sh.out, "\ninvalid command, use `/help` to list commands.")
		fmt.Fprintln(sh.out)
		return nil
	}

	err := cmd.Execute(ctx, sh, fields[1:])
	if reported := sh.report(err); reported {
		return nil
	}
	return err
}

// report prints input errors. It returns true when err needs no further
// handling.
func (sh *Shell) report(err error) bool {
	var msg string
	switch {
	case err == nil:
		return true
	case errors.Is(err, notes.ErrNoteExists):
		msg = "File already exists."
	case errors.Is(err, notes.ErrNoteNotFound):
		msg = "File does not exist."
	case errors.Is(err, notes.ErrReservedTitle):
		msg = "That title is reserved, access the directory from /files."
	case errors.Is(err, notes.ErrInvalidTitle):
		msg = "A file name must be a single non-empty line."
	case errors.Is(err, errEmptyPassword):
		msg = "Password must not be empty."
	default:
		return false
	}
	fmt.Fprintf(sh.out, "%s %s\n\n", color.RedString("error:"), msg)
	return true
}

// appendTo writes one timestamped line to the note titled title.
func (sh *Shell) appendTo(title, text string) error {
	engine := sh.env.Notes()
	key, err := engine.Select(title)
	if err != nil {
		if sh.report(err) {
			return nil
		}
		return err
	}

	app, err := engine.OpenForAppend(key)
	if err != nil {
		return err
	}
	defer app.Close()

	entry := notes.Entry(sh.now(), text)
	if err := app.Append(entry); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, entry)
	return nil
}

// edit shows a note and appends every line to it until /quit.
func (sh *Shell) edit(ctx context.Context, key, first string) error {
	engine := sh.env.Notes()

	title, err := engine.TitleHeaderOf(key)
	if err != nil {
		return err
	}
	body, err := engine.Body(key)
	if err != nil {
		return err
	}

	app, err := engine.OpenForAppend(key)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Fprintf(sh.out, "Opening document %q\n", title)
	clearScreen(sh.out)
	sh.banner(sh.out, title)
	for _, line := range body {
		fmt.Fprintln(sh.out, line)
	}
	fmt.Fprintln(sh.out)

	write := func(text string) error {
		entry := notes.Entry(sh.now(), text)
		if err := app.Append(entry); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, entry)
		return nil
	}

	if first != "" {
		if err := write(first); err != nil {
			return err
		}
	}

	for {
		line, err := sh.readLine(ctx)
		if err != nil {
			return err
		}
		if line == quitCommand {
			fmt.Fprintln(sh.out, "\nExiting document...")
			fmt.Fprintln(sh.out, "Exited document.")
			fmt.Fprintln(sh.out)
			return nil
		}
		if line == "" {
			continue
		}
		if err := write(line); err != nil {
			return err
		}
	}
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\x1b[2J\x1b[H")
}
