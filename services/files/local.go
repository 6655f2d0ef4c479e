package filesvc

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sprakportal/backend/core"
)

// Storage stores uploaded media under random names so uploads can never
// clobber each other or escape the media root.
type Storage interface {
	Save(r io.Reader, originalName string) (string, error)
	Open(filename string) (io.ReadCloser, error)
	Remove(filename string) error
	Path(filename string) string
}

type localStorage struct {
	root string
	lock *flock.Flock
}

var _ Storage = (*localStorage)(nil)

func NewLocalStorage(conf *core.Config) (Storage, error) {
	root := conf.MediaRoot
	if !filepath.IsAbs(root) {
		root = filepath.Join(conf.WorkDir, root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating media root")
	}
	return &localStorage{
		root: root,
		lock: flock.New(filepath.Join(root, ".lock")),
	}, nil
}

// Save writes the content under a fresh random name, keeping only the
// original extension, and returns the stored name.
func (s *localStorage) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext

	if err := s.lock.Lock(); err != nil {
		return "", errors.Wrap(err, "locking media root")
	}
	defer func() { _ = s.lock.Unlock() }()

	f, err := os.OpenFile(s.Path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "creating media file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, r); err != nil {
		_ = os.Remove(s.Path(name))
		return "", errors.Wrap(err, "writing media file")
	}
	return name, nil
}

func (s *localStorage) Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(filename))
	if err != nil {
		return nil, errors.Wrap(err, "opening media file")
	}
	return f, nil
}

func (s *localStorage) Remove(filename string) error {
	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(err, "locking media root")
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.Remove(s.Path(filename)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing media file")
	}
	return nil
}

// Path resolves a stored name inside the media root; path separators in the
// name are rejected by resolving its base only.
func (s *localStorage) Path(filename string) string {
	return filepath.Join(s.root, filepath.Base(filename))
}
