// Package prefs persists console preferences in a small named-key slot.
// The slot file lives at ~/.config/leadconsole/prefs.toml by default; a path
// ending in .db is kept in SQLite instead.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/leadconsole/internal/lead"
)

const (
	// ViewKey holds the JSON view preference blob.
	ViewKey = "msc_state_v1"
	// ThemeKey holds the console theme name.
	ThemeKey = "theme"

	defaultPrefsPath = "~/.config/leadconsole/prefs.toml"
	defaultTheme     = "Dracula"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Slot is a persistent string key-value store.
type Slot interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// View is the list view preference state.
type View struct {
	Search         string
	FilterStatus   string // a lead.Status value or lead.FilterAll
	SortDescending bool
}

// DefaultView returns the preferences used when nothing valid is stored.
func DefaultView() View {
	return View{Search: "", FilterStatus: lead.FilterAll, SortDescending: true}
}

// wireView is the stored JSON shape.
type wireView struct {
	Search       string `json:"search"`
	FilterStatus string `json:"filterStatus"`
	SortDesc     bool   `json:"sortDesc"`
}

// NormalizeFilter maps a filter value to a canonical status name, or to
// lead.FilterAll when it is blank or unknown.
func NormalizeFilter(value string) string {
	if st, ok := lead.ParseStatus(value); ok {
		return string(st)
	}
	return lead.FilterAll
}

// LoadView reads the view preferences from slot. Each field falls back to its
// default on its own when it is missing or malformed; LoadView never fails.
func LoadView(slot Slot) View {
	v := DefaultView()
	if slot == nil {
		return v
	}
	raw, ok, err := slot.Get(ViewKey)
	if err != nil || !ok {
		return v
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return v
	}

	// Pointers tell JSON null apart from a stored zero value.
	var search *string
	if msg, ok := fields["search"]; ok && json.Unmarshal(msg, &search) == nil && search != nil {
		v.Search = *search
	}
	var filter *string
	if msg, ok := fields["filterStatus"]; ok && json.Unmarshal(msg, &filter) == nil && filter != nil {
		v.FilterStatus = NormalizeFilter(*filter)
	}
	var sortDesc *bool
	if msg, ok := fields["sortDesc"]; ok && json.Unmarshal(msg, &sortDesc) == nil && sortDesc != nil {
		v.SortDescending = *sortDesc
	}
	return v
}

// SaveView serializes v and overwrites the stored blob.
func SaveView(slot Slot, v View) error {
	if slot == nil {
		return errors.New("no preference slot")
	}
	data, err := json.Marshal(wireView{
		Search:       v.Search,
		FilterStatus: NormalizeFilter(v.FilterStatus),
		SortDesc:     v.SortDescending,
	})
	if err != nil {
		return fmt.Errorf("marshal view prefs: %w", err)
	}
	return slot.Set(ViewKey, string(data))
}

// LoadTheme returns the stored theme name or the default theme.
func LoadTheme(slot Slot) string {
	if slot == nil {
		return defaultTheme
	}
	name, ok, err := slot.Get(ThemeKey)
	if err != nil || !ok || strings.TrimSpace(name) == "" {
		return defaultTheme
	}
	return strings.TrimSpace(name)
}

// SaveTheme stores the theme name.
func SaveTheme(slot Slot, name string) error {
	if slot == nil {
		return errors.New("no preference slot")
	}
	return slot.Set(ThemeKey, name)
}

// Backend is a Slot persisted somewhere on disk.
type Backend interface {
	Slot
	Path() string
	Close() error
}

// Open returns the slot for path. Files ending in .db, .sqlite or .sqlite3 use
// SQLite; anything else is a TOML file.
func Open(path string) (Backend, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(path))) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	}
	return OpenFile(path)
}

// FileSlot keeps every key in a single TOML table on disk.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

// OpenFile returns a slot backed by the file at path. The file is created on
// first write.
func OpenFile(path string) (*FileSlot, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	return &FileSlot{path: resolved}, nil
}

// Path returns the resolved file path.
func (f *FileSlot) Path() string {
	return f.path
}

// Close is a no-op; the file is rewritten on every Set.
func (f *FileSlot) Close() error {
	return nil
}

// Get returns the value stored under key.
func (f *FileSlot) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", false, err
	}
	value, ok := entries[key]
	return value, ok, nil
}

// Set overwrites the value stored under key, creating directories as needed.
func (f *FileSlot) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		// A corrupt file is replaced rather than left blocking every write.
		entries = map[string]string{}
	}
	entries[key] = value

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	bytes, err := toml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(f.path, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func (f *FileSlot) read() (map[string]string, error) {
	bytes, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	entries := map[string]string{}
	if err := toml.Unmarshal(bytes, &entries); err != nil {
		return nil, fmt.Errorf("parse prefs: %w", err)
	}
	return entries, nil
}

// MemorySlot is an in-process Slot.
type MemorySlot struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{entries: map[string]string{}}
}

// Get returns the value stored under key.
func (m *MemorySlot) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemorySlot) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string]string{}
	}
	m.entries[key] = value
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
