package sink

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// DirSink writes artifacts into a local directory.
type DirSink struct {
	Dir string
	mu  sync.Mutex
}

func NewDirSink(dir string) *DirSink {
	if dir == "" {
		dir = "."
	}
	return &DirSink{Dir: dir}
}

func (s *DirSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(s.Dir, safeName(name))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create directory")
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write '%s'", target)
	}
	return target, nil
}

func (s *DirSink) String() string {
	return "dir:" + s.Dir
}
