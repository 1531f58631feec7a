// Package prefs persists the user's query preferences and tells listeners
// when one of them changes.
package prefs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fruitcakej/GuardianNews/internal/logging"
)

const (
	KeyPageSize = "min_articles"
	KeyOrderBy  = "order_by"
	KeySections = "cat_sections"
)

// Keys lists every preference that affects the article query.
var Keys = []string{KeyPageSize, KeyOrderBy, KeySections}

// Values is the on-disk shape. Empty fields mean "not set".
type Values struct {
	PageSize string   `yaml:"min_articles,omitempty"`
	OrderBy  string   `yaml:"order_by,omitempty"`
	Sections []string `yaml:"cat_sections,omitempty"`
}

func (v Values) clone() Values {
	v.Sections = slices.Clone(v.Sections)
	return v
}

// Defaults supplies fallback values and display labels.
type Defaults struct {
	PageSize     string
	OrderBy      string
	Sections     []string
	SectionLabel func(string) string
	OrderLabel   func(string) string
}

// Listener is called once per change with the keys that differ, in Keys
// order.
type Listener func(keys []string)

type Store struct {
	path     string
	defaults Defaults
	logger   *slog.Logger

	mu        sync.Mutex
	values    Values
	listeners []Listener
}

// Open loads the preference file at path. A missing file is an empty store.
func Open(path string, defaults Defaults, logger *slog.Logger) (*Store, error) {
	if defaults.SectionLabel == nil {
		defaults.SectionLabel = func(s string) string { return s }
	}
	if defaults.OrderLabel == nil {
		defaults.OrderLabel = func(s string) string { return s }
	}
	if logger == nil {
		logger = logging.Discard()
	}

	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, defaults: defaults, logger: logger, values: values}, nil
}

func readFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Values{}, nil
	}
	if err != nil {
		return Values{}, fmt.Errorf("reading preferences: %w", err)
	}
	var v Values
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Values{}, fmt.Errorf("parsing preferences %s: %w", path, err)
	}
	v.PageSize = strings.TrimSpace(v.PageSize)
	v.OrderBy = strings.TrimSpace(v.OrderBy)
	v.Sections = normalizeSections(v.Sections)
	return v, nil
}

func normalizeSections(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Stored returns the raw persisted values.
func (s *Store) Stored() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.clone()
}

// Values returns the preferences with page size and order defaulted.
// Sections stay empty when nothing is selected.
func (s *Store) Values() Values {
	v := s.Stored()
	if v.PageSize == "" {
		v.PageSize = s.defaults.PageSize
	}
	if v.OrderBy == "" {
		v.OrderBy = s.defaults.OrderBy
	}
	return v
}

// OnChange registers fn. Listeners run outside the store lock, on the
// goroutine that made the change.
func (s *Store) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) SetPageSize(v string) (bool, error) {
	return s.update(func(vals *Values) { vals.PageSize = strings.TrimSpace(v) })
}

func (s *Store) SetOrderBy(v string) (bool, error) {
	return s.update(func(vals *Values) { vals.OrderBy = strings.TrimSpace(v) })
}

func (s *Store) SetSections(sections []string) (bool, error) {
	return s.update(func(vals *Values) { vals.Sections = normalizeSections(sections) })
}

// ToggleSection adds section to the selection or removes it.
func (s *Store) ToggleSection(section string) (bool, error) {
	return s.update(func(vals *Values) {
		if i := slices.Index(vals.Sections, section); i >= 0 {
			vals.Sections = slices.Delete(vals.Sections, i, i+1)
			return
		}
		vals.Sections = normalizeSections(append(vals.Sections, section))
	})
}

// Reset clears every preference back to its default.
func (s *Store) Reset() (bool, error) {
	return s.update(func(vals *Values) { *vals = Values{} })
}

func (s *Store) update(mutate func(*Values)) (bool, error) {
	s.mu.Lock()
	next := s.values.clone()
	mutate(&next)
	changed := diff(s.values, next)
	if len(changed) == 0 {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.write(next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.values = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.notify(listeners, changed)
	return true, nil
}

// write replaces the file atomically. Callers hold s.mu.
func (s *Store) write(v Values) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// reload re-reads the file and notifies once if it differs from memory.
// The read happens under s.mu, so it cannot observe a file older than an
// own write that memory already reflects.
func (s *Store) reload() error {
	s.mu.Lock()
	next, err := readFile(s.path)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	changed := diff(s.values, next)
	if len(changed) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.values = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.logger.Info("preferences changed on disk", "keys", changed)
	s.notify(listeners, changed)
	return nil
}

func (s *Store) notify(listeners []Listener, keys []string) {
	for _, fn := range listeners {
		fn(slices.Clone(keys))
	}
}

func diff(a, b Values) []string {
	var keys []string
	if a.PageSize != b.PageSize {
		keys = append(keys, KeyPageSize)
	}
	if a.OrderBy != b.OrderBy {
		keys = append(keys, KeyOrderBy)
	}
	if !slices.Equal(a.Sections, b.Sections) {
		keys = append(keys, KeySections)
	}
	return keys
}

// Summary renders the current value of key for display.
func (s *Store) Summary(key string) string {
	v := s.Values()
	switch key {
	case KeyPageSize:
		return v.PageSize
	case KeyOrderBy:
		return s.defaults.OrderLabel(v.OrderBy)
	case KeySections:
		if len(v.Sections) == 0 {
			return s.labels(s.defaults.Sections) + " (default)"
		}
		return s.labels(v.Sections)
	}
	return ""
}

func (s *Store) labels(sections []string) string {
	out := make([]string, len(sections))
	for i, sec := range sections {
		out[i] = s.defaults.SectionLabel(sec)
	}
	return strings.Join(out, ", ")
}
