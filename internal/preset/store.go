package preset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/emailuser9812-ship-it/HZ-speaker/internal/metrics"
	"github.com/emailuser9812-ship-it/HZ-speaker/internal/synth"
)

// DefaultName is stored as preset.json, the file the desktop tool used.
const DefaultName = "preset"

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Store keeps named presets as <dir>/<name>.json.
type Store struct {
	dir    string
	logger *zap.Logger
}

func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger.With(zap.String("component", "preset"), zap.String("dir", dir))}
}

func (s *Store) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: bad preset name %q", synth.ErrInvalidParameter, name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Save writes p under name, replacing any previous preset atomically.
func (s *Store) Save(name string, p synth.Params) (err error) {
	defer func() { observe("save", err) }()

	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.json")
	if err != nil {
		return fmt.Errorf("create temp preset: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, FromParams(p)); err != nil {
		tmp.Close()
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp preset: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename preset: %w", err)
	}

	s.logger.Info("preset saved", zap.String("name", name), zap.String("path", path))
	return nil
}

// Load reads and validates the preset called name. It has no side effects:
// applying the result is the caller's decision.
func (s *Store) Load(name string) (p synth.Params, err error) {
	defer func() { observe("load", err) }()

	path, err := s.path(name)
	if err != nil {
		return synth.Params{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return synth.Params{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return synth.Params{}, fmt.Errorf("open preset: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		s.logger.Warn("preset rejected", zap.String("name", name), zap.Error(err))
		return synth.Params{}, err
	}
	return doc.Params()
}

// List returns the names of stored presets in lexical order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read preset dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() || !validName.MatchString(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrInvalid), errors.Is(err, synth.ErrInvalidParameter):
		outcome = "invalid"
	default:
		outcome = "error"
	}
	metrics.PresetOpsTotal.WithLabelValues(op, outcome).Inc()
}
