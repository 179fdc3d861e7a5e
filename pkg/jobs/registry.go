package jobs

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Definition)
)

// Register adds a named job definition so CLI tools can look it up. The
// definition is validated on registration.
func Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[def.Name()]; exists {
		return fmt.Errorf("job already registered: %s", def.Name())
	}
	registry[def.Name()] = def
	return nil
}

// Get returns a registered job definition by name.
func Get(name string) (*Definition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", name)
	}
	return def, nil
}

// List returns the names of all registered job definitions.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var names []string
	for name := range registry {
		names = append(names, name)
	}
	return names
}
