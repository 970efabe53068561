package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/illarion/notevault/internal/credential"
	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/notes"
)

var fixedTime = time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)

type fakeEnv struct {
	engine *notes.Engine
	creds  *credential.Store
	rekeys int
}

func (e *fakeEnv) Notes() *notes.Engine {
	return e.engine
}

func (e *fakeEnv) Credentials() *credential.Store {
	return e.creds
}

func (e *fakeEnv) Rekey() error {
	e.rekeys++
	return nil
}

func newEnv(t *testing.T) *fakeEnv {
	t.Helper()
	color.NoColor = true

	engine, err := notes.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open engine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	if err := engine.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout failed: %v", err)
	}

	creds := credential.New(t.TempDir())
	if err := creds.Init(); err != nil {
		t.Fatalf("credential Init failed: %v", err)
	}
	if err := creds.Write([]byte("hunter2"), credential.Primary); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return &fakeEnv{engine: engine, creds: creds}
}

func runShell(t *testing.T, env *fakeEnv, input string) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(Options{
		In:  strings.NewReader(input),
		Out: &out,
		Now: func() time.Time { return fixedTime },
	})
	if err := sh.Run(context.Background(), env); err != nil {
		t.Fatalf("Run failed: %v\n%s", err, out.String())
	}
	return out.String()
}

func body(t *testing.T, env *fakeEnv, title string) []string {
	t.Helper()
	key, err := env.engine.Select(title)
	if err != nil {
		t.Fatalf("Select(%q) failed: %v", title, err)
	}
	lines, err := env.engine.Body(key)
	if err != nil {
		t.Fatalf("Body failed: %v", err)
	}
	return lines
}

func TestPlainTextGoesToLandingNote(t *testing.T) {
	env := newEnv(t)

	out := runShell(t, env, "hello there\n\n/quit\n")

	want := []string{"2024-06-01 12:30:45 hello there"}
	if got := body(t, env, notes.LandingTitle); !reflect.DeepEqual(got, want) {
		t.Errorf("landing body = %q, want %q", got, want)
	}
	if !strings.Contains(out, want[0]) {
		t.Errorf("entry not echoed:\n%s", out)
	}
}

func TestNewSelectAndQuit(t *testing.T) {
	env := newEnv(t)

	input := strings.Join([]string{
		"/new todo",
		"buy milk",
		"/quit",
		"/sel todo call mom",
		"/quit",
		"/quit",
		"never read",
	}, "\n") + "\n"
	out := runShell(t, env, input)

	want := []string{
		"2024-06-01 12:30:45 buy milk",
		"2024-06-01 12:30:45 call mom",
	}
	if got := body(t, env, "todo"); !reflect.DeepEqual(got, want) {
		t.Errorf("todo body = %q, want %q", got, want)
	}
	if !strings.Contains(out, "File Created.") || !strings.Contains(out, "Exited document.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := body(t, env, notes.LandingTitle); len(got) != 0 {
		t.Errorf("landing note written after quit: %q", got)
	}

	titles, _ := env.engine.ListTitles()
	if !reflect.DeepEqual(titles, []string{"todo"}) {
		t.Errorf("ListTitles() = %v, want [todo]", titles)
	}
}

func TestNewPromptsForTitle(t *testing.T) {
	env := newEnv(t)

	out := runShell(t, env, "/new\nshopping list\n/quit\n/files\n/quit\n")

	if !strings.Contains(out, "What is the file name") {
		t.Errorf("no title prompt:\n%s", out)
	}
	titles, _ := env.engine.ListTitles()
	if !reflect.DeepEqual(titles, []string{"shopping list"}) {
		t.Errorf("ListTitles() = %v", titles)
	}
	if !strings.Contains(out, "Directory") || !strings.Contains(out, "shopping list") {
		t.Errorf("/files output missing:\n%s", out)
	}
}

func TestInputErrorsKeepLoopRunning(t *testing.T) {
	env := newEnv(t)
	if _, err := env.engine.Create("todo"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out := runShell(t, env, strings.Join([]string{
		"/new todo",
		"/select ghost",
		"/select contents",
		"/new main",
		"/bogus",
		"after errors",
		"/quit",
	}, "\n")+"\n")

	for _, want := range []string{
		"File already exists.",
		"File does not exist.",
		"reserved",
		"invalid command",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := body(t, env, notes.LandingTitle); len(got) != 1 {
		t.Errorf("loop stopped early, landing body = %q", got)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	env := newEnv(t)
	for _, title := range []string{"keep", "drop"} {
		if _, err := env.engine.Create(title); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	out := runShell(t, env, "/del keep\nn\n/delete drop\ny\n/quit\n")

	if !strings.Contains(out, "deletion cancelled") || !strings.Contains(out, "Deleted file.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	titles, _ := env.engine.ListTitles()
	if !reflect.DeepEqual(titles, []string{"keep"}) {
		t.Errorf("ListTitles() = %v, want [keep]", titles)
	}
}

func TestNewPasswordPrimary(t *testing.T) {
	env := newEnv(t)

	out := runShell(t, env, "/pass\nn\ncorrect horse\n/quit\n")

	if !strings.Contains(out, "password saved successfully") {
		t.Errorf("unexpected output:\n%s", out)
	}
	ok, err := env.creds.Verify([]byte("correct horse"))
	if err != nil || !ok {
		t.Errorf("new primary does not verify: %v, %v", ok, err)
	}
	if ok, _ := env.creds.Verify([]byte("hunter2")); ok {
		t.Error("old primary still verifies")
	}
	if env.rekeys != 1 {
		t.Errorf("Rekey called %d times, want 1", env.rekeys)
	}
}

func TestNewPasswordMaster(t *testing.T) {
	env := newEnv(t)

	out := runShell(t, env, "/newpassword\ny\n/quit\n")

	idx := strings.Index(out, "master password: ")
	if idx < 0 {
		t.Fatalf("master password not shown:\n%s", out)
	}
	master := strings.Fields(out[idx+len("master password: "):])[0]
	if len(master) != credential.MasterLength {
		t.Fatalf("master %q has length %d", master, len(master))
	}
	if ok, _ := env.creds.Verify([]byte(master)); !ok {
		t.Error("generated master does not verify")
	}
	if ok, _ := env.creds.Verify([]byte("hunter2")); !ok {
		t.Error("primary invalidated by master regeneration")
	}
	if env.rekeys != 0 {
		t.Errorf("Rekey called %d times for a master change", env.rekeys)
	}
}

func TestNewPasswordRejectsEmpty(t *testing.T) {
	env := newEnv(t)

	out := runShell(t, env, "/pass\nn\n\n/quit\n")

	if !strings.Contains(out, "Password must not be empty.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if ok, _ := env.creds.Verify([]byte("hunter2")); !ok {
		t.Error("primary changed after empty input")
	}
}

func TestHelpListsCommandsAndAliases(t *testing.T) {
	env := newEnv(t)

	out := runShell(t, env, "/help\n/quit\n")

	for _, want := range []string{"/select (/sel)", "/files (/dir)", "/delete (/del)", "/newpassword (/pass)", "/clear", "/new"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	r := builtins()

	tests := []struct {
		input string
		want  string
	}{
		{"/sel", "/select"},
		{"select", "/select"},
		{"/dir", "/files"},
		{"/del", "/delete"},
		{"/pass", "/newpassword"},
		{"quit", "/quit"},
	}
	for _, tt := range tests {
		c, ok := r.Lookup(tt.input)
		if !ok {
			t.Errorf("Lookup(%q) found nothing", tt.input)
			continue
		}
		if c.Name() != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.input, c.Name(), tt.want)
		}
	}
	if _, ok := r.Lookup("/nope"); ok {
		t.Error("Lookup(/nope) found a command")
	}
}

func TestEOFEndsSession(t *testing.T) {
	env := newEnv(t)
	// No /quit: end of input inside a note still returns cleanly.
	runShell(t, env, "/new todo\nhalf written")

	if got := body(t, env, "todo"); len(got) != 1 {
		t.Errorf("todo body = %q", got)
	}
}

func TestCancelStopsLoop(t *testing.T) {
	env := newEnv(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sh := New(Options{In: pr, Out: io.Discard})

	errc := make(chan error, 1)
	go func() { errc <- sh.Run(ctx, env) }()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFigureBanner(t *testing.T) {
	var out bytes.Buffer
	FigureBanner("standard")(&out, "Hi")
	if lines := strings.Count(out.String(), "\n"); lines < 3 {
		t.Errorf("banner has %d lines, want a multi-line figure:\n%s", lines, out.String())
	}
}

func TestEntryKeyIsTitleDigest(t *testing.T) {
	env := newEnv(t)
	runShell(t, env, "/new todo\n/quit\n/quit\n")

	if _, err := env.engine.OpenForAppend(crypto.DigestString("todo")); err != nil {
		t.Errorf("note not stored under its title digest: %v", err)
	}
}
