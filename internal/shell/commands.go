package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/illarion/notevault/internal/credential"
	"github.com/illarion/notevault/internal/index"
)

var errEmptyPassword = errors.New("empty password")

func builtins() *Registry {
	r := NewRegistry()
	r.Register(&command{
		name:    "/select",
		aliases: []string{"/sel"},
		usage:   "<file name> <message>",
		summary: "opens <file name> and writes <message> in file",
		run:     runSelect,
	})
	r.Register(&command{
		name:    "/new",
		usage:   "<file name>",
		summary: "creates file of <file name>",
		run:     runNew,
	})
	r.Register(&command{
		name:    "/files",
		aliases: []string{"/dir"},
		summary: "lists all files in directory",
		run:     runFiles,
	})
	r.Register(&command{
		name:    "/delete",
		aliases: []string{"/del"},
		usage:   "<file name>",
		summary: "deletes file from directory",
		run:     runDelete,
	})
	r.Register(&command{
		name:    quitCommand,
		summary: "quits document or terminal",
		run: func(context.Context, *Shell, []string) error {
			return errQuit
		},
	})
	r.Register(&command{
		name:    "/clear",
		summary: "clears terminal (not document)",
		run: func(_ context.Context, sh *Shell, _ []string) error {
			clearScreen(sh.out)
			return nil
		},
	})
	r.Register(&command{
		name:    "/help",
		summary: "shows this list",
		run:     runHelp,
	})
	r.Register(&command{
		name:    "/newpassword",
		aliases: []string{"/pass"},
		summary: "generates new master-pass / create new password",
		run:     runNewPassword,
	})
	return r
}

// titleArg takes the title from args or asks for it. A prompted title
// may contain spaces.
func titleArg(ctx context.Context, sh *Shell, args []string) (string, []string, error) {
	if len(args) > 0 {
		return args[0], args[1:], nil
	}
	title, err := sh.prompt(ctx, "What is the file name")
	return title, nil, err
}

func runSelect(ctx context.Context, sh *Shell, args []string) error {
	title, rest, err := titleArg(ctx, sh, args)
	if err != nil {
		return err
	}
	key, err := sh.env.Notes().Select(title)
	if err != nil {
		return err
	}
	return sh.edit(ctx, key, strings.Join(rest, " "))
}

func runNew(ctx context.Context, sh *Shell, args []string) error {
	title, _, err := titleArg(ctx, sh, args)
	if err != nil {
		return err
	}

	fmt.Fprintln(sh.out, "Creating file...")
	key, err := sh.env.Notes().Create(title)
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "File Created.")
	fmt.Fprintln(sh.out)
	return sh.edit(ctx, key, "")
}

func runFiles(_ context.Context, sh *Shell, _ []string) error {
	titles, err := sh.env.Notes().ListTitles()
	if err != nil {
		return err
	}

	sh.banner(sh.out, "Directory")
	for _, title := range titles {
		fmt.Fprintln(sh.out, title)
	}
	fmt.Fprintln(sh.out)
	return nil
}

func runDelete(ctx context.Context, sh *Shell, args []string) error {
	title, _, err := titleArg(ctx, sh, args)
	if err != nil {
		return err
	}
	if title == index.Title {
		fmt.Fprintln(sh.out, color.YellowString("Deleting the contents file would lose the names of every note."))
	}

	ok, err := sh.confirm(ctx, "Are you sure you want to delete?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(sh.out, "deletion cancelled")
		fmt.Fprintln(sh.out)
		return nil
	}

	fmt.Fprintln(sh.out, "Deleting...")
	if err := sh.env.Notes().DeleteByTitle(title); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Deleted file.")
	fmt.Fprintln(sh.out)
	return nil
}

func runHelp(_ context.Context, sh *Shell, _ []string) error {
	sh.banner(sh.out, "Help Board")
	sh.registry.WriteHelp(sh.out)
	fmt.Fprintln(sh.out)
	fmt.Fprintln(sh.out, "    Any line without a leading / is written to the main file.")
	fmt.Fprintln(sh.out)
	return nil
}

func runNewPassword(ctx context.Context, sh *Shell, _ []string) error {
	creds := sh.env.Credentials()

	gen, err := sh.confirm(ctx, "Do you want to generate new master password?")
	if err != nil {
		return err
	}
	if gen {
		master, err := creds.GenerateMaster()
		if err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "...\npassword saved successfully.")
		fmt.Fprintf(sh.out, "Here is your master password: %s\n\n", color.YellowString(master))
		return nil
	}

	password, err := sh.prompt(ctx, "What will your new password be?")
	if err != nil {
		return err
	}
	if password == "" {
		return errEmptyPassword
	}
	if err := creds.Write([]byte(password), credential.Primary); err != nil {
		return err
	}
	// The closing seal must use the key of the new primary.
	if err := sh.env.Rekey(); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "...\npassword saved successfully.")
	fmt.Fprintln(sh.out)
	return nil
}
