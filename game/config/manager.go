package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/maze-puzzle-game/game/engine"
	"github.com/wricardo/maze-puzzle-game/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// BuiltinID is the config ID of the pack compiled into the engine.
const BuiltinID = "classic"

// extensions lists the pack formats in lookup order.
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles level pack loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	defaultID     string
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	// Load default config
	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a level pack by name. The name may carry a .json, .yaml or
// .yml extension; without one each format is tried in turn.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	configPath, err := m.findConfigFile(name)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) && id == BuiltinID {
			config := engine.DefaultGameConfig()
			m.configs[id] = config
			return config, nil
		}
		return nil, err
	}

	config, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Cache the config
	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all available level packs
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !IsConfigFile(entry.Name()) {
			continue
		}

		name := configID(entry.Name())
		if seen[name] {
			continue
		}

		// Try to load the config to get details
		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[name] = true

		configs = append(configs, newConfigInfo(entry.Name(), name, config, false))
	}

	if !seen[BuiltinID] {
		configs = append(configs, newConfigInfo("", BuiltinID, engine.DefaultGameConfig(), true))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default level pack
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// DefaultID returns the config ID of the default level pack
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default level pack by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	m.defaultID = configID(name)
	return nil
}

// RefreshCache reloads all cached level packs from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	// Clear cache
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	// Reload default config
	return m.loadDefaultConfig()
}

// loadDefaultConfig picks classic from disk, then the first valid pack on
// disk, then the built-in pack.
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(BuiltinID)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			return fmt.Errorf("no usable level pack: %w", err)
		}
		config, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			return err
		}
		m.setDefault(configs[0].ConfigID, config)
		return nil
	}

	m.setDefault(BuiltinID, config)
	return nil
}

func (m *Manager) setDefault(id string, config *engine.GameConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	m.defaultID = id
}

// SaveConfig saves a level pack to disk. A .yaml or .yml name is written as
// YAML, anything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	// Validate config before saving
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strings.ContainsAny(name, `/\`) || name == "" {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}

	filename := name
	if !IsConfigFile(filename) {
		filename = name + ".json"
	}

	var data []byte
	var err error
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		// Marshal config to JSON with indentation
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[configID(name)] = config
	m.mu.Unlock()

	return nil
}

// findConfigFile resolves a pack name to a path inside the config directory.
func (m *Manager) findConfigFile(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", ErrConfigNotFound
	}
	candidates := []string{name}
	if !IsConfigFile(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}
	for _, c := range candidates {
		path := filepath.Join(m.configDir, c)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// LoadFile reads, decodes and validates a pack file, then resolves any
// map files relative to the pack's directory.
func LoadFile(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.GameConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := engine.ResolveMapFiles(&config, filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

func newConfigInfo(filename, id string, config *engine.GameConfig, builtin bool) *service.ConfigInfo {
	names := make([]string, len(config.Levels))
	for i, l := range config.Levels {
		names[i] = l.Name
	}
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id, // This is the identifier to use for session creation
		Name:        config.Name,
		Description: config.Description,
		Levels:      len(config.Levels),
		LevelNames:  names,
		BuiltIn:     builtin,
	}
}

// IsConfigFile reports whether the name has a level pack extension.
func IsConfigFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func configID(name string) string {
	if IsConfigFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
