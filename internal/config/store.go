package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mzyy94/rasterkit/internal/colorspace"
	"github.com/mzyy94/rasterkit/internal/pcl"
	"github.com/mzyy94/rasterkit/internal/sunras"
)

// Settings holds the filter defaults.
type Settings struct {
	MaxWidth   int     `json:"maxWidth"`
	MaxHeight  int     `json:"maxHeight"`
	Primary    string  `json:"primary"`   // colorspace for color images
	Secondary  string  `json:"secondary"` // colorspace for gray images
	Saturation int     `json:"saturation"`
	Hue        int     `json:"hue"`
	Gamma      float64 `json:"gamma"`
	Brightness int     `json:"brightness"`
	Resolution int     `json:"resolution"`

	// Printer description; DeviceModel 0 with no page geometry means
	// none is available.
	DeviceModel int     `json:"deviceModel"`
	PageLength  float64 `json:"pageLength"`
	PageTop     float64 `json:"pageTop"`

	ProofFormat string `json:"proofFormat"` // "pdf" or "tiff"
}

// DefaultSettings returns the default filter settings.
func DefaultSettings() Settings {
	return Settings{
		MaxWidth:    sunras.DefaultMaxWidth,
		MaxHeight:   sunras.DefaultMaxHeight,
		Primary:     colorspace.RGB.String(),
		Secondary:   colorspace.White.String(),
		Saturation:  100,
		Hue:         0,
		Gamma:       1,
		Brightness:  100,
		Resolution:  300,
		ProofFormat: "pdf",
	}
}

// DecodeOptions converts the settings to Sun raster decode options.
func (s Settings) DecodeOptions() (sunras.Options, error) {
	primary, err := colorspace.ParseSpace(s.Primary)
	if err != nil {
		return sunras.Options{}, fmt.Errorf("primary: %w", err)
	}
	secondary, err := colorspace.ParseSpace(s.Secondary)
	if err != nil {
		return sunras.Options{}, fmt.Errorf("secondary: %w", err)
	}
	return sunras.Options{
		MaxWidth:   s.MaxWidth,
		MaxHeight:  s.MaxHeight,
		Primary:    primary,
		Secondary:  secondary,
		Saturation: s.Saturation,
		Hue:        s.Hue,
		LUT:        colorspace.NewLUT(s.Gamma, s.Brightness),
	}, nil
}

// Device returns the printer description, or nil when none is set.
func (s Settings) Device() *pcl.Device {
	if s.DeviceModel == 0 && s.PageLength == 0 && s.PageTop == 0 {
		return nil
	}
	return &pcl.Device{
		ModelNumber: s.DeviceModel,
		PageLength:  s.PageLength,
		PageTop:     s.PageTop,
	}
}

// Store provides thread-safe settings persistence backed by a JSON file.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	path     string
}

// NewStore creates a Store that persists settings to dataDir/settings.json.
// If the file does not exist or is invalid, default settings are used.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	s := &Store{
		path:     filepath.Join(dataDir, "settings.json"),
		settings: DefaultSettings(),
	}
	s.load()
	return s, nil
}

// NewMemoryStore creates a Store that keeps settings in memory only (no file persistence).
func NewMemoryStore() *Store {
	return &Store{settings: DefaultSettings()}
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update replaces the settings and persists to disk.
func (s *Store) Update(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.save()
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return // file missing is OK, use defaults
	}
	// Fields missing from the file keep their defaults.
	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("invalid settings file, using defaults", "path", s.path, "err", err)
		return
	}
	s.settings = settings
}

func (s *Store) save() error {
	if s.path == "" {
		return nil // memory-only mode
	}
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
