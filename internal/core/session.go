package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/awnumar/memguard"
	"github.com/fatih/color"

	"github.com/illarion/notevault/internal/config"
	"github.com/illarion/notevault/internal/credential"
	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/logging"
	"github.com/illarion/notevault/internal/notes"
	"github.com/illarion/notevault/internal/storage"
	"github.com/illarion/notevault/internal/vault"
)

// Env is what a UI can reach while the session is unlocked.
type Env interface {
	Notes() *notes.Engine
	Credentials() *credential.Store
	Rekey() error
}

// UI runs the interactive part of a session. Run returns when the user
// quits, input ends, ctx is cancelled, or an error occurs.
type UI interface {
	Run(ctx context.Context, env Env) error
}

// UIFunc adapts a function to the UI interface.
type UIFunc func(ctx context.Context, env Env) error

func (f UIFunc) Run(ctx context.Context, env Env) error {
	return f(ctx, env)
}

// Session guards one unlock of the working directory.
type Session struct {
	cfg   *config.Config
	creds *credential.Store
	ui    UI
	log   logging.Logger
	out   io.Writer
	now   func() time.Time

	state  State
	kdf    *crypto.KDF
	key    *memguard.LockedBuffer
	engine *notes.Engine
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithOutput sets where user-facing messages are written.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// WithClock overrides the time source used for state timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a locked session over cfg's layout.
func NewSession(cfg *config.Config, ui UI, opts ...Option) *Session {
	s := &Session{
		cfg:   cfg,
		creds: credential.New(cfg.CredentialsDir()),
		ui:    ui,
		out:   os.Stdout,
		now:   time.Now,
		state: Locked,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return s.state
}

// Notes returns the note engine. It is nil unless the session is unlocked.
func (s *Session) Notes() *notes.Engine {
	return s.engine
}

// Credentials returns the credential store.
func (s *Session) Credentials() *credential.Store {
	return s.creds
}

// Run authenticates password, unlocks the working directory, runs the UI
// and seals the directory again. It returns a process exit code.
func (s *Session) Run(ctx context.Context, password []byte) int {
	if err := s.authenticate(password, true); err != nil {
		if errors.Is(err, ErrWrongPassword) {
			fmt.Fprintln(s.out, "Wrong password.")
			return ExitRejected
		}
		s.log.Errorf("%v", err)
		return ExitFailure
	}

	if err := s.unlock(ctx); err != nil {
		s.log.Errorf("%v", err)
		if errors.Is(err, ErrUnsealedState) {
			fmt.Fprintln(s.out, "Run 'notevault seal' to encrypt it before starting a new session.")
		}
		return ExitFailure
	}

	if err := s.serve(ctx); err != nil {
		s.log.Errorf("%v", err)
		return ExitFailure
	}
	return ExitOK
}

// authenticate moves the session out of Locked. With bootstrap set, an
// empty primary credential is replaced by password.
func (s *Session) authenticate(password []byte, bootstrap bool) error {
	s.state = Authenticating

	first, err := s.creds.IsFirstRun()
	if err != nil {
		return err
	}

	if first {
		if !bootstrap {
			return ErrWrongPassword
		}
		if len(password) == 0 {
			return ErrEmptyPassword
		}
		if err := s.creds.Write(password, credential.Primary); err != nil {
			return err
		}
		master, err := s.creds.GenerateMaster()
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, "...\npassword saved successfully.")
		fmt.Fprintf(s.out, "Here is your master password: %s\n", color.YellowString(master))
		fmt.Fprintln(s.out, "It will not be shown again. Store it somewhere safe.")
		s.state = Bootstrapped
		return nil
	}

	ok, err := s.creds.Verify(password)
	if err != nil {
		return err
	}
	if !ok {
		s.state = Rejected
		return ErrWrongPassword
	}

	fmt.Fprintln(s.out, "Correct password.")
	s.state = Authenticated
	return nil
}

// deriveKey recomputes the seal key from the stored primary digest.
func (s *Session) deriveKey() error {
	if s.kdf == nil {
		kdf, err := s.loadKDF()
		if err != nil {
			return err
		}
		s.kdf = kdf
	}

	digest, err := s.creds.PrimaryDigest()
	if err != nil {
		return err
	}

	key := s.kdf.DeriveKey([]byte(digest))
	if s.key != nil {
		s.key.Destroy()
	}
	// NewBufferFromBytes wipes key.
	s.key = memguard.NewBufferFromBytes(key)
	return nil
}

// recordedIterations is the iteration count stored for scheme. Only
// pbkdf2 iterates.
func recordedIterations(scheme string, iterations int) uint32 {
	if scheme != crypto.SchemePBKDF2 {
		return 0
	}
	return uint32(iterations)
}

// loadKDF prefers the scheme recorded at init over the config file, so
// editing the config cannot strand sealed notes.
func (s *Session) loadKDF() (*crypto.KDF, error) {
	scheme, iterations := s.cfg.KDF.Scheme, int(recordedIterations(s.cfg.KDF.Scheme, s.cfg.KDF.Iterations))

	err := s.withState(func(db *storage.Storage) error {
		recorded, iters, err := db.GetKDF()
		if err != nil {
			return err
		}
		if recorded == "" {
			return db.SetKDF(scheme, uint32(iterations))
		}
		if recorded != scheme || int(iters) != iterations {
			s.log.Debugf("Using recorded key derivation %s/%d over configured %s/%d", recorded, iters, scheme, iterations)
		}
		scheme, iterations = recorded, int(iters)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return crypto.NewKDF(scheme, iterations)
}

func (s *Session) withState(fn func(db *storage.Storage) error) error {
	if _, err := os.Stat(s.cfg.StatePath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotInitialized, s.cfg.StatePath())
		}
		return err
	}

	db, err := storage.Open(s.cfg.StatePath())
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// unlock decrypts the working directory. On failure abortUnseal puts the
// directory back to ciphertext and flags it sealed.
func (s *Session) unlock(ctx context.Context) error {
	if err := s.deriveKey(); err != nil {
		return err
	}

	err := s.withState(func(db *storage.Storage) error {
		sealed, err := db.IsSealed()
		if err != nil {
			return err
		}
		if !sealed {
			return ErrUnsealedState
		}
		return db.MarkUnsealed(s.now())
	})
	if err != nil {
		s.destroyKey()
		return err
	}

	result, err := vault.DecryptDirectory(ctx, s.cfg.WorkDir(), s.key.Bytes())
	if err != nil {
		s.abortUnseal(ctx, result)
		s.destroyKey()
		return fmt.Errorf("failed to unseal notes: %w", err)
	}
	s.log.Infof("Unsealed %d file(s)", len(result.Files))
	s.recordBatch(vault.Unseal, result)

	engine, err := notes.Open(s.cfg.WorkDir())
	if err == nil {
		err = engine.EnsureLayout()
	}
	s.engine = engine
	s.state = Unlocked
	if err != nil {
		return errors.Join(fmt.Errorf("failed to prepare notes: %w", err), s.release(ctx))
	}
	return nil
}

// abortUnseal restores the sealed state after a failed decrypt. Files
// already written as plaintext are encrypted again first; if that fails
// the directory stays flagged unsealed so 'notevault seal' can finish.
func (s *Session) abortUnseal(ctx context.Context, partial *vault.Result) {
	if partial != nil && len(partial.Files) > 0 {
		if _, err := vault.EncryptFiles(context.WithoutCancel(ctx), s.cfg.WorkDir(), s.key.Bytes(), partial.Files); err != nil {
			s.log.Warnf("failed to re-encrypt partially unsealed notes: %v", err)
			s.log.Warnf("already decrypted: %s", strings.Join(partial.Files, ", "))
			return
		}
	}

	if err := s.withState(func(db *storage.Storage) error {
		return db.MarkSealed(s.now())
	}); err != nil {
		s.log.Warnf("failed to restore sealed flag: %v", err)
	}
}

// serve runs the UI and always seals afterwards, even after a panic.
func (s *Session) serve(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session aborted: %v", r)
		}
		err = errors.Join(err, s.release(context.WithoutCancel(ctx)))
	}()

	err = s.ui.Run(ctx, s)
	if errors.Is(err, context.Canceled) {
		s.log.Infof("Interrupted, sealing notes")
		return nil
	}
	return err
}

// release seals the working directory and destroys the key.
func (s *Session) release(ctx context.Context) error {
	if s.state != Unlocked {
		return nil
	}
	if s.engine != nil {
		s.engine.Close()
		s.engine = nil
	}
	defer s.destroyKey()

	result, err := vault.EncryptDirectory(ctx, s.cfg.WorkDir(), s.key.Bytes())
	if err != nil {
		return fmt.Errorf("failed to seal notes: %w", err)
	}

	err = s.withState(func(db *storage.Storage) error {
		return db.MarkSealed(s.now())
	})
	if err != nil {
		return fmt.Errorf("notes sealed but state not recorded: %w", err)
	}

	s.state = Sealed
	s.recordBatch(vault.Seal, result)
	fmt.Fprintln(s.out, "encrypted files successfully")
	return nil
}

func (s *Session) recordBatch(d vault.Direction, result *vault.Result) {
	err := s.withState(func(db *storage.Storage) error {
		return db.RecordBatch(storage.BatchRecord{
			Direction: d.String(),
			At:        s.now(),
			Files:     len(result.Files),
		})
	})
	if err != nil {
		s.log.Warnf("failed to record %s: %v", d, err)
	}
}

func (s *Session) destroyKey() {
	if s.key != nil {
		s.key.Destroy()
		s.key = nil
	}
}

// Rekey recomputes the seal key after the primary credential changed, so
// the closing seal matches the next login.
func (s *Session) Rekey() error {
	if s.state != Unlocked {
		return ErrNotUnlocked
	}
	return s.deriveKey()
}

// Seal authenticates password and encrypts a working directory that was
// left unsealed.
func (s *Session) Seal(ctx context.Context, password []byte) (*vault.Result, error) {
	if err := s.authenticate(password, false); err != nil {
		return nil, err
	}
	defer s.destroyKey()
	if err := s.deriveKey(); err != nil {
		return nil, err
	}

	err := s.withState(func(db *storage.Storage) error {
		sealed, err := db.IsSealed()
		if err != nil {
			return err
		}
		if sealed {
			return ErrAlreadySealed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := vault.EncryptDirectory(ctx, s.cfg.WorkDir(), s.key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to seal notes: %w", err)
	}
	if err := s.withState(func(db *storage.Storage) error {
		return db.MarkSealed(s.now())
	}); err != nil {
		return result, err
	}
	s.state = Sealed
	s.recordBatch(vault.Seal, result)
	return result, nil
}

// Check authenticates password, unseals, reports inconsistencies between
// note files and the index, and seals again.
func (s *Session) Check(ctx context.Context, password []byte) (problems []notes.Problem, err error) {
	if err := s.authenticate(password, false); err != nil {
		return nil, err
	}
	if err := s.unlock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, s.release(context.WithoutCancel(ctx)))
	}()

	return s.engine.Check()
}
