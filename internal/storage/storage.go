package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/elevatic20/worktime-app/internal/timecalc"
)

var (
	// ErrNotExist is returned by Read when no value is stored under a key.
	ErrNotExist = errors.New("storage: key does not exist")
	// ErrInvalidKey is returned for keys that cannot be mapped to a flat file name.
	ErrInvalidKey = errors.New("storage: invalid key")
	// ErrInvalidUser is returned by Key for user names that cannot form a file name.
	ErrInvalidUser = errors.New("invalid user name")
)

const (
	keySuffix     = ".json"
	corruptSuffix = ".corrupt"
)

// Blobs is a flat key/value store addressed by file name. Every Write
// replaces the whole value.
type Blobs interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	// Quarantine moves the value under key aside and returns the new key.
	Quarantine(ctx context.Context, key string) (string, error)
	// List returns all keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// BaseDir returns the root data directory (~/.wt).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".wt"), nil
}

// ValidateUser checks that name can be embedded in a storage key.
func ValidateUser(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidUser)
	case strings.ContainsAny(name, `/\`+"\x00"), strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q", ErrInvalidUser, name)
	}
	return nil
}

// Key returns the partition key for a user's month, e.g. "ana_03-2024.json".
func Key(user string, m timecalc.Month) (string, error) {
	if err := ValidateUser(user); err != nil {
		return "", err
	}
	return user + "_" + m.String() + keySuffix, nil
}

// ParseKey splits a partition key back into user and month.
func ParseKey(key string) (string, timecalc.Month, bool) {
	base, ok := strings.CutSuffix(key, keySuffix)
	if !ok {
		return "", timecalc.Month{}, false
	}
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return "", timecalc.Month{}, false
	}
	m, err := timecalc.ParseMonth(base[i+1:])
	if err != nil {
		return "", timecalc.Month{}, false
	}
	return base[:i], m, true
}

// Months lists the months that hold a partition for user, oldest first.
func Months(ctx context.Context, b Blobs, user string) ([]timecalc.Month, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	keys, err := b.List(ctx, user+"_")
	if err != nil {
		return nil, err
	}
	var months []timecalc.Month
	for _, k := range keys {
		u, m, ok := ParseKey(k)
		if ok && u == user {
			months = append(months, m)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].First().Before(months[j].First())
	})
	return months, nil
}

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`+"\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Files stores each key as a file in a single directory.
type Files struct {
	Dir string
}

// NewFiles returns a Files store rooted at dir. The directory is created on
// first write.
func NewFiles(dir string) *Files {
	return &Files{Dir: dir}
}

func (f *Files) path(key string) string {
	return filepath.Join(f.Dir, key)
}

// Read returns the contents of key, or ErrNotExist.
func (f *Files) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	path := f.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, key)
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return data, nil
}

// Write atomically replaces the contents of key.
func (f *Files) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	path := f.path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Quarantine renames key to key+".corrupt".
func (f *Files) Quarantine(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkKey(key); err != nil {
		return "", err
	}
	backup := key + corruptSuffix
	if err := os.Rename(f.path(key), f.path(backup)); err != nil {
		return "", fmt.Errorf("storage error backing up %s: %w", key, err)
	}
	return backup, nil
}

// List returns the keys in the directory that start with prefix.
func (f *Files) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error listing %s: %w", f.Dir, err)
	}
	var keys []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), prefix) {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}
