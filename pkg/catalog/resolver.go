package catalog

import (
	"strings"

	"github.com/ghodss/yaml"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// A MappingStore persists user-supplied overrides from source-folder labels
// to item directory names. The core only ever reads it; new entries are
// added when the interactive prompt supplies a resolution.
type MappingStore struct {
	fs      afero.Fs
	path    string
	entries map[string]string
}

// LoadMappingStore reads the override map at `path`. A missing file is an
// empty store, not an error, since most users never need overrides.
func LoadMappingStore(fs afero.Fs, path string) (*MappingStore, error) {
	store := &MappingStore{fs: fs, path: path, entries: map[string]string{}}

	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		if exists, existsErr := afero.Exists(fs, path); existsErr == nil && !exists {
			return store, nil
		}
		return nil, errors.WithContext(err, "read mapping file")
	}

	if err := yaml.Unmarshal(contents, &store.entries); err != nil {
		return nil, errors.WithContext(err, "parse mapping file")
	}
	return store, nil
}

// Get returns the override for a normalized label.
func (store *MappingStore) Get(label string) (string, bool) {
	target, ok := store.entries[strings.ToLower(label)]
	return target, ok
}

// Put records an override and persists the store.
func (store *MappingStore) Put(label, target string) error {
	store.entries[strings.ToLower(label)] = target

	contents, err := yaml.Marshal(store.entries)
	if err != nil {
		return errors.WithContext(err, "marshal mapping")
	}
	if err := afero.WriteFile(store.fs, store.path, contents, 0644); err != nil {
		return errors.WithContext(err, "write mapping file")
	}
	return nil
}

// A Prompt asks an external party (usually the user at a terminal) to name
// the target item for an unrecognised label. Returning false means the label
// stays unresolved.
type Prompt func(label string) (string, bool)

// A Resolver maps arbitrary source-folder labels to canonical item
// directories. Resolution order: persisted overrides, then the built-in car
// map, then the prompt capability. Silent runs pass a nil prompt so nothing
// ever blocks waiting for input.
type Resolver struct {
	store  *MappingStore
	prompt Prompt
}

// NewResolver builds a resolver over the given override store. `prompt` may
// be nil.
func NewResolver(store *MappingStore, prompt Prompt) *Resolver {
	return &Resolver{store: store, prompt: prompt}
}

// Resolve maps a folder label to an item directory name. Unresolved labels
// return false; the caller skips the folder for this run.
func (r *Resolver) Resolve(label string) (string, bool) {
	name := normalizeLabel(label)

	if target, ok := r.store.Get(name); ok {
		return target, true
	}
	if target, ok := lookupBuiltin(name); ok {
		return target, true
	}

	if r.prompt == nil {
		return "", false
	}

	answer, ok := r.prompt(label)
	if !ok {
		return "", false
	}
	target := CleanName(answer)
	if target == "" {
		return "", false
	}
	if err := r.store.Put(name, target); err != nil {
		log.WithError(err).Warn("Failed to persist mapping override")
	}
	return target, true
}
