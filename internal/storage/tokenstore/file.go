package tokenstore

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
)

const (
	sessionExt  = ".session"
	keyFileName = "session.key"
	dirMode     = 0o700
	fileMode    = 0o600
)

// magic identifies sealed session files; the byte after it names the cipher.
var magic = []byte("MXS1")

var cipherIDs = map[CipherType]byte{
	CipherAESGCM:   1,
	CipherChaCha20: 2,
}

var profilePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// ErrCorruptSession means a session file exists but cannot be opened.
var ErrCorruptSession = errors.New("tokenstore: session file is corrupt or was sealed with another key")

// FileBackend keeps one sealed file per profile in a session-scoped
// directory. Files are written atomically (temp file + rename).
type FileBackend struct {
	dir     string
	profile string
	key     []byte
	sealer  *sealer
}

// DefaultDir returns the session directory for the current OS session:
// $XDG_RUNTIME_DIR/maxedu when set, otherwise a per-user temp directory.
func DefaultDir() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "maxedu")
	}
	return filepath.Join(os.TempDir(), "maxedu-"+strconv.Itoa(os.Getuid()))
}

// NewFileBackend opens (or creates) the session directory and its key.
func NewFileBackend(dir, profile string) (*FileBackend, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if !ValidProfileName(profile) {
		return nil, fmt.Errorf("tokenstore: invalid profile name %q", profile)
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("tokenstore: create dir: %w", err)
	}

	key, err := loadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, err
	}
	s, err := newSealer(key)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: %w", err)
	}

	return &FileBackend{dir: dir, profile: profile, key: key, sealer: s}, nil
}

// Path returns the session file of this backend's profile.
func (f *FileBackend) Path() string {
	return filepath.Join(f.dir, f.profile+sessionExt)
}

func (f *FileBackend) Load() (domain.Tokens, error) {
	raw, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return domain.Tokens{}, nil
	}
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("tokenstore: read session: %w", err)
	}

	if len(raw) < len(magic)+1 || !bytes.Equal(raw[:len(magic)], magic) {
		return domain.Tokens{}, ErrCorruptSession
	}

	s := f.sealer
	if id := raw[len(magic)]; id != cipherIDs[s.kind] {
		// Written on a host that preferred the other AEAD.
		kind := CipherChaCha20
		if id == cipherIDs[CipherAESGCM] {
			kind = CipherAESGCM
		}
		if s, err = newSealerWithType(f.key, kind); err != nil {
			return domain.Tokens{}, ErrCorruptSession
		}
	}

	plain, err := s.open(raw[len(magic)+1:], []byte(f.profile))
	if err != nil {
		return domain.Tokens{}, ErrCorruptSession
	}

	var tokens domain.Tokens
	if err := json.Unmarshal(plain, &tokens); err != nil {
		return domain.Tokens{}, ErrCorruptSession
	}
	return tokens, nil
}

func (f *FileBackend) Save(tokens domain.Tokens) error {
	plain, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	sealed, err := f.sealer.seal(plain, []byte(f.profile))
	if err != nil {
		return fmt.Errorf("tokenstore: seal: %w", err)
	}

	buf := make([]byte, 0, len(magic)+1+len(sealed))
	buf = append(buf, magic...)
	buf = append(buf, cipherIDs[f.sealer.kind])
	buf = append(buf, sealed...)

	return writeFileAtomic(f.Path(), buf)
}

func (f *FileBackend) Clear() error {
	err := os.Remove(f.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("tokenstore: remove session: %w", err)
	}
	return nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("tokenstore: key file %s has wrong size", path)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("tokenstore: read key: %w", err)
	}

	key = make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("tokenstore: generate key: %w", err)
	}

	// O_EXCL so two processes racing on first use agree on one key.
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if errors.Is(err, os.ErrExist) {
		return loadOrCreateKey(path)
	}
	if err != nil {
		return nil, fmt.Errorf("tokenstore: create key: %w", err)
	}
	if _, err := fh.Write(key); err != nil {
		fh.Close()
		os.Remove(path)
		return nil, fmt.Errorf("tokenstore: write key: %w", err)
	}
	if err := fh.Close(); err != nil {
		return nil, fmt.Errorf("tokenstore: write key: %w", err)
	}
	return key, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("tokenstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("tokenstore: write temp: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("tokenstore: chmod temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("tokenstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("tokenstore: rename: %w", err)
	}
	return nil
}

// ValidProfileName reports whether name can scope a session file.
func ValidProfileName(name string) bool {
	return profilePattern.MatchString(name)
}
