package core

import (
	"errors"

	"github.com/illarion/notevault/internal/credential"
)

const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitRejected = 2
)

var (
	ErrNotInitialized = credential.ErrNotInitialized
	ErrAlreadyExists  = errors.New("notevault already initialized")
	ErrWrongPassword  = errors.New("wrong password")
	ErrUnsealedState  = errors.New("working directory was left unsealed")
	ErrAlreadySealed  = errors.New("working directory is already sealed")
	ErrEmptyPassword  = errors.New("password must not be empty")
	ErrNotUnlocked    = errors.New("session is not unlocked")
)
