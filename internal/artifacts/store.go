// Package artifacts persists generated images on the local filesystem, one
// directory per artifact kind.
package artifacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind selects the directory an artifact is stored under.
type Kind string

const (
	Categories  Kind = "categories"
	Patterns    Kind = "patterns"
	Products    Kind = "products"
	Backgrounds Kind = "backgrounds"
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{Categories, Patterns, Products, Backgrounds}
}

var (
	ErrUnknownKind = errors.New("unknown artifact kind")
	ErrBadName     = errors.New("invalid artifact name")
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Store writes artifacts below a root directory.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

// Save writes data as <root>/<kind>/<name> and returns the path.
func (s *Store) Save(kind Kind, name string, data []byte) (string, error) {
	path, err := s.path(kind, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Path resolves an existing artifact.
func (s *Store) Path(kind Kind, name string) (string, error) {
	path, err := s.path(kind, name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// List returns the artifact names stored under kind, sorted.
func (s *Store) List(kind Kind) ([]string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, string(kind)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) path(kind Kind, name string) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return filepath.Join(s.root, string(kind), name), nil
}
