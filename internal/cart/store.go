package cart

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Persister saves and restores the cart's item collection. It is the
// local-storage analog: invoked after every transition, outside the reducer.
type Persister interface {
	Save(items []Item) error
	Load() ([]Item, error)
}

// FilePersister stores cart items as JSON on disk
type FilePersister struct {
	Path string
}

// Save writes the item collection to disk
func (p *FilePersister) Save(items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}
	if err := os.WriteFile(p.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	return nil
}

// Load reads the item collection from disk. A missing file yields an
// empty cart, not an error.
func (p *FilePersister) Load() ([]Item, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse cart file: %w", err)
	}
	return items, nil
}

// Store owns a cart state and serializes dispatches against it. Persistence
// runs after each state change as a side effect; a persist failure never
// rolls the transition back.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
}

// NewStore creates a cart store, restoring any previously persisted items
func NewStore(persister Persister) (*Store, error) {
	s := &Store{
		state:     Empty(),
		persister: persister,
	}

	if persister != nil {
		items, err := persister.Load()
		if err != nil {
			return nil, err
		}
		s.state = Reduce(s.state, Load{Items: items})
	}

	return s, nil
}

// Dispatch applies an action and persists the resulting item collection
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, action)

	if s.persister != nil {
		// Persistence is fire-and-forget relative to the transition
		_ = s.persister.Save(s.state.Items)
	}

	return s.state
}

// State returns the current cart state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
