package lang

import (
	"sort"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// ExecutionContext is the mutable environment threaded through one
// evaluation. Locals belong to the context; Globals and Variables are
// shared by every context created from the same [Runtime].
type ExecutionContext struct {
	Me     any
	You    any
	It     any
	Result any
	Event  any

	Locals    *Locals
	Globals   *Store
	Variables *Store

	// Host answers selector queries and host-global lookups.
	Host Host
}

// NewExecutionContext returns a context with empty locals and its own
// global and variable stores.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		Locals:    NewLocals(),
		Globals:   NewStore(),
		Variables: NewStore(),
		Host:      nullHost{},
	}
}

// Child returns a context for a nested invocation: the slots and shared
// stores are inherited, locals start empty.
func (ec *ExecutionContext) Child() *ExecutionContext {
	child := *ec
	child.Locals = NewLocals()

	return &child
}

// Slot returns the value of a context slot name such as "me" or "it".
func (ec *ExecutionContext) Slot(name string) (any, bool) {
	switch name {
	case "me", "my", "I":
		return ec.Me, true
	case "you", "your", "yourself":
		return ec.You, true
	case "it", "its":
		return ec.It, true
	case "result":
		return ec.Result, true
	case "event":
		return ec.Event, true
	}

	return nil, false
}

// slot is [ExecutionContext.Slot] without aliases. Every name it accepts
// is also accepted by assignSlot, so an assigned slot reads back.
func (ec *ExecutionContext) slot(name string) (any, bool) {
	switch name {
	case "me":
		return ec.Me, true
	case "you":
		return ec.You, true
	case "it":
		return ec.It, true
	case "result":
		return ec.Result, true
	case "event":
		return ec.Event, true
	}

	return nil, false
}

// assignSlot writes v into the slot named by target, reporting whether
// target names a slot.
func (ec *ExecutionContext) assignSlot(target string, v any) bool {
	switch target {
	case "me":
		ec.Me = v
	case "you":
		ec.You = v
	case "it":
		ec.It = v
	case "result":
		ec.Result = v
	case "event":
		ec.Event = v
	default:
		return false
	}

	return true
}

// Locals is the block-scoped tier. It preserves insertion order and is
// owned by a single evaluation frame.
type Locals struct {
	keys   []string
	values map[string]any
}

func NewLocals() *Locals {
	return &Locals{values: map[string]any{}}
}

// LocalsOf returns locals holding the entries of m in key order.
func LocalsOf(m map[string]any) *Locals {
	l := NewLocals()
	for _, k := range sortedKeys(m) {
		l.Set(k, Normalize(m[k]))
	}

	return l
}

func (l *Locals) Get(name string) (any, bool) {
	if l == nil {
		return nil, false
	}

	v, ok := l.values[name]

	return v, ok
}

func (l *Locals) Set(name string, v any) {
	if _, ok := l.values[name]; !ok {
		l.keys = append(l.keys, name)
	}

	l.values[name] = v
}

func (l *Locals) Delete(name string) {
	if _, ok := l.values[name]; !ok {
		return
	}

	delete(l.values, name)

	for i, k := range l.keys {
		if k == name {
			l.keys = append(l.keys[:i], l.keys[i+1:]...)

			break
		}
	}
}

// Keys returns the names in insertion order.
func (l *Locals) Keys() []string {
	if l == nil {
		return nil
	}

	return append([]string(nil), l.keys...)
}

func (l *Locals) Len() int {
	if l == nil {
		return 0
	}

	return len(l.keys)
}

// Store is a process-lifetime tier (globals or variables). It is safe for
// concurrent use; concurrent writers of the same name are not ordered.
type Store struct {
	m cmap.ConcurrentMap[string, any]
}

func NewStore() *Store {
	return &Store{m: cmap.New[any]()}
}

// StoreOf returns a store holding the entries of m.
func StoreOf(m map[string]any) *Store {
	s := NewStore()
	for k, v := range m {
		s.Set(k, Normalize(v))
	}

	return s
}

func (s *Store) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}

	return s.m.Get(name)
}

func (s *Store) Set(name string, v any) { s.m.Set(name, v) }

func (s *Store) Delete(name string) { s.m.Remove(name) }

func (s *Store) Has(name string) bool {
	return s != nil && s.m.Has(name)
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}

	return s.m.Count()
}

// Keys returns the names in lexical order.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}

	keys := s.m.Keys()
	sort.Strings(keys)

	return keys
}

// Snapshot copies the store into a plain map.
func (s *Store) Snapshot() map[string]any {
	if s == nil {
		return map[string]any{}
	}

	return s.m.Items()
}

// Clear removes every entry.
func (s *Store) Clear() { s.m.Clear() }
