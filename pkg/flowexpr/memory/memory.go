// Package memory provides the data contexts expressions are evaluated against.
package memory

import (
	"errors"
	"strconv"
	"sync"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// Memory resolves variable paths during evaluation.
// Implementations must be safe for concurrent reads.
type Memory interface {
	// GetValue returns the value at path, or value.Missing if nothing is there.
	// An error is returned only when the lookup itself fails.
	GetValue(path string) (value.Value, error)

	// SetValue stores v at path, creating intermediate objects as needed.
	SetValue(path string, v value.Value) error

	// Version changes whenever the memory content changes.
	Version() string
}

// Sentinel errors for memory operations.
var (
	// ErrInvalidPath indicates a path that cannot be parsed or followed.
	ErrInvalidPath = errors.New("invalid memory path")

	// ErrMemoryClosed indicates the backing store has been closed.
	ErrMemoryClosed = errors.New("memory closed")

	// ErrEmptyStack indicates Pop was called on a StackedMemory with no layers.
	ErrEmptyStack = errors.New("memory stack is empty")
)

// MapMemory is an in-process Memory backed by a value.Object.
type MapMemory struct {
	mu      sync.RWMutex
	root    value.Object
	version int
}

// Compile-time interface check.
var _ Memory = (*MapMemory)(nil)

// New creates a MapMemory from plain Go data.
// If data is nil, an empty memory is returned.
func New(data map[string]any) *MapMemory {
	root, _ := value.FromAny(data).(value.Object)
	if root == nil {
		root = value.Object{}
	}
	return &MapMemory{root: root}
}

// FromObject creates a MapMemory over obj. The object is not copied.
func FromObject(obj value.Object) *MapMemory {
	if obj == nil {
		obj = value.Object{}
	}
	return &MapMemory{root: obj}
}

// GetValue implements Memory.
func (m *MapMemory) GetValue(path string) (value.Value, error) {
	segs, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Walk(m.root, segs), nil
}

// SetValue implements Memory.
func (m *MapMemory) SetValue(path string, v value.Value) error {
	segs, err := ParsePath(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	updated, err := SetPath(m.root, segs, value.OrMissing(v))
	if err != nil {
		return err
	}
	m.root = updated.(value.Object)
	m.version++
	return nil
}

// Version implements Memory.
func (m *MapMemory) Version() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return strconv.Itoa(m.version)
}

// Snapshot returns the current root object.
// The returned object must not be modified.
func (m *MapMemory) Snapshot() value.Object {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// StackedMemory layers memories; reads search from the top layer down.
// It is used to scope lambda iterator variables and is not safe for
// concurrent Push/Pop.
type StackedMemory struct {
	layers []Memory
}

// Compile-time interface check.
var _ Memory = (*StackedMemory)(nil)

// Wrap returns a StackedMemory whose bottom layer is m.
// Wrapping a StackedMemory copies its layers so the original is untouched.
func Wrap(m Memory) *StackedMemory {
	if sm, ok := m.(*StackedMemory); ok {
		layers := make([]Memory, len(sm.layers))
		copy(layers, sm.layers)
		return &StackedMemory{layers: layers}
	}
	return &StackedMemory{layers: []Memory{m}}
}

// Push adds a layer on top.
func (s *StackedMemory) Push(m Memory) {
	s.layers = append(s.layers, m)
}

// Pop removes the top layer.
func (s *StackedMemory) Pop() error {
	if len(s.layers) == 0 {
		return ErrEmptyStack
	}
	s.layers = s.layers[:len(s.layers)-1]
	return nil
}

// Depth returns the number of layers.
func (s *StackedMemory) Depth() int {
	return len(s.layers)
}

// GetValue implements Memory. The first layer holding a non-missing value wins.
func (s *StackedMemory) GetValue(path string) (value.Value, error) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		v, err := s.layers[i].GetValue(path)
		if err != nil {
			return nil, err
		}
		if !value.IsMissing(v) {
			return v, nil
		}
	}
	return value.Null, nil
}

// SetValue implements Memory by writing to the top layer.
func (s *StackedMemory) SetValue(path string, v value.Value) error {
	if len(s.layers) == 0 {
		return ErrEmptyStack
	}
	return s.layers[len(s.layers)-1].SetValue(path, v)
}

// Version implements Memory.
func (s *StackedMemory) Version() string {
	var out string
	for _, l := range s.layers {
		out += l.Version() + "/"
	}
	return out
}
