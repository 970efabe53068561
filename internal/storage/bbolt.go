package storage

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// FileName is the database file name inside the credentials directory.
const FileName = "state.db"

// Bucket names
var (
	StateBucket = []byte("state")
)

// State keys
var (
	KeyVersion       = []byte("version")
	KeySealed        = []byte("sealed")
	KeyLastSealed    = []byte("last_sealed")
	KeyLastUnsealed  = []byte("last_unsealed")
	KeySessions      = []byte("sessions")
	KeyVaultID       = []byte("vault_id")
	KeyKDFScheme     = []byte("kdf_scheme")
	KeyKDFIterations = []byte("kdf_iterations")
	KeyLastBatch     = []byte("last_batch")
)

var (
	valueTrue  = []byte("1")
	valueFalse = []byte("0")
)

// Storage provides BBolt-based storage for notevault seal state
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a state database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the state bucket and marks the directory sealed.
// Existing values are kept, so re-running init is harmless.
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		state, err := tx.CreateBucketIfNotExists(StateBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", StateBucket, err)
		}

		if state.Get(KeyVersion) == nil {
			if err := state.Put(KeyVersion, []byte("1")); err != nil {
				return err
			}
		}
		if state.Get(KeySealed) == nil {
			if err := state.Put(KeySealed, valueTrue); err != nil {
				return err
			}
		}
		if state.Get(KeyVaultID) == nil {
			if err := state.Put(KeyVaultID, []byte(uuid.NewString())); err != nil {
				return err
			}
		}
		return nil
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		state := tx.Bucket(StateBucket)
		if state != nil && state.Get(KeyVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

func (s *Storage) get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		state := tx.Bucket(StateBucket)
		if state == nil {
			return fmt.Errorf("state bucket not found")
		}
		if v := state.Get(key); v != nil {
			// Make a copy since the slice is only valid during the transaction
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

func (s *Storage) getTime(key []byte) (time.Time, error) {
	var t time.Time
	data, err := s.get(key)
	if err != nil || data == nil {
		return t, err
	}
	err = t.UnmarshalBinary(data)
	return t, err
}

// IsSealed reports whether the working directory was last left sealed.
// A database without a sealed flag reads as sealed.
func (s *Storage) IsSealed() (bool, error) {
	data, err := s.get(KeySealed)
	if err != nil {
		return false, err
	}
	return data == nil || string(data) == string(valueTrue), nil
}

// MarkSealed records that the directory is ciphertext again.
func (s *Storage) MarkSealed(at time.Time) error {
	return s.setFlag(valueTrue, KeyLastSealed, at, false)
}

// MarkUnsealed records that the directory is about to hold plaintext and
// counts the session.
func (s *Storage) MarkUnsealed(at time.Time) error {
	return s.setFlag(valueFalse, KeyLastUnsealed, at, true)
}

func (s *Storage) setFlag(flag, timeKey []byte, at time.Time, countSession bool) error {
	stamp, err := at.MarshalBinary()
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		state := tx.Bucket(StateBucket)
		if state == nil {
			return fmt.Errorf("state bucket not found")
		}
		if err := state.Put(KeySealed, flag); err != nil {
			return err
		}
		if err := state.Put(timeKey, stamp); err != nil {
			return err
		}
		if !countSession {
			return nil
		}

		var n uint64
		if v := state.Get(KeySessions); len(v) == 8 {
			n = binary.BigEndian.Uint64(v)
		}
		counter := make([]byte, 8)
		binary.BigEndian.PutUint64(counter, n+1)
		return state.Put(KeySessions, counter)
	})
}

// LastSealed returns when the directory was last sealed, or the zero time.
func (s *Storage) LastSealed() (time.Time, error) {
	return s.getTime(KeyLastSealed)
}

// LastUnsealed returns when the directory was last unsealed, or the zero time.
func (s *Storage) LastUnsealed() (time.Time, error) {
	return s.getTime(KeyLastUnsealed)
}

// Sessions returns how many sessions have unsealed the directory.
func (s *Storage) Sessions() (uint64, error) {
	data, err := s.get(KeySessions)
	if err != nil || len(data) != 8 {
		return 0, err
	}
	return binary.BigEndian.Uint64(data), nil
}

// SetKDF records the key derivation scheme and iteration count.
func (s *Storage) SetKDF(scheme string, iterations uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		state := tx.Bucket(StateBucket)
		if state == nil {
			return fmt.Errorf("state bucket not found")
		}
		iters := make([]byte, 4)
		binary.BigEndian.PutUint32(iters, iterations)
		if err := state.Put(KeyKDFScheme, []byte(scheme)); err != nil {
			return err
		}
		return state.Put(KeyKDFIterations, iters)
	})
}

// GetKDF returns the recorded key derivation scheme and iterations. An
// empty scheme means none was recorded.
func (s *Storage) GetKDF() (string, uint32, error) {
	scheme, err := s.get(KeyKDFScheme)
	if err != nil {
		return "", 0, err
	}
	iters, err := s.get(KeyKDFIterations)
	if err != nil {
		return "", 0, err
	}
	var iterations uint32
	if len(iters) == 4 {
		iterations = binary.BigEndian.Uint32(iters)
	}
	return string(scheme), iterations, nil
}

// GetVaultID retrieves the vault ID from the state bucket
func (s *Storage) GetVaultID() (string, error) {
	data, err := s.get(KeyVaultID)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", fmt.Errorf("vault_id not found")
	}
	return string(data), nil
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (s *Storage) GetOrCreateVaultID() (string, error) {
	vaultID, err := s.GetVaultID()
	if err == nil {
		return vaultID, nil
	}

	vaultID = uuid.NewString()
	err = s.db.Update(func(tx *bolt.Tx) error {
		state, err := tx.CreateBucketIfNotExists(StateBucket)
		if err != nil {
			return err
		}
		return state.Put(KeyVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}

	return vaultID, nil
}
