package flowexpr

import (
	"fmt"
	"sort"
	"sync"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/registry"
)

// Lookup resolves a function or operator name to its evaluator.
type Lookup func(name string) (*Evaluator, bool)

// FunctionTable is an immutable mapping from function and operator names to
// evaluators. Several names may share one evaluator. Every method that
// changes the mapping returns a new table.
type FunctionTable struct {
	table *registry.Table[string, *Evaluator]
}

// NewFunctionTable builds a table that registers each evaluator under its
// Type. Later evaluators with the same Type replace earlier ones.
func NewFunctionTable(evaluators ...*Evaluator) *FunctionTable {
	entries := make(map[string]*Evaluator, len(evaluators))
	for _, ev := range evaluators {
		if ev != nil {
			entries[ev.Type] = ev
		}
	}
	return &FunctionTable{table: registry.NewTable(entries)}
}

var (
	standardOnce  sync.Once
	standardTable *FunctionTable
)

// StandardFunctions returns the table of built-in functions and operators.
// It is built on first use and shared afterwards.
func StandardFunctions() *FunctionTable {
	standardOnce.Do(func() {
		standardTable = buildStandardFunctions()
	})
	return standardTable
}

// builtin is an evaluator plus the extra names it answers to.
type builtin struct {
	ev      *Evaluator
	aliases []string
}

func fn(ev *Evaluator, aliases ...string) builtin {
	return builtin{ev: ev, aliases: aliases}
}

func buildStandardFunctions() *FunctionTable {
	groups := [][]builtin{
		mathBuiltins(),
		logicBuiltins(),
		compareBuiltins(),
		stringBuiltins(),
		collectionBuiltins(),
		objectBuiltins(),
		convertBuiltins(),
		miscBuiltins(),
	}

	r := registry.New[string, *Evaluator]()
	for _, group := range groups {
		entries := make(map[string]*Evaluator)
		for _, b := range group {
			entries[b.ev.Type] = b.ev
			for _, alias := range b.aliases {
				entries[alias] = b.ev
			}
		}
		r.RegisterMany(entries)
	}
	return &FunctionTable{table: r.Freeze()}
}

// Lookup resolves name. A nil table resolves nothing.
func (t *FunctionTable) Lookup(name string) (*Evaluator, bool) {
	if t == nil || t.table == nil {
		return nil, false
	}
	return t.table.Get(name)
}

// Names returns every registered name, sorted.
func (t *FunctionTable) Names() []string {
	if t == nil || t.table == nil {
		return nil
	}
	names := t.table.Keys()
	sort.Strings(names)
	return names
}

// Synonyms returns every name, sorted, that resolves to the same evaluator
// as name, including name itself. An unknown name has no synonyms.
func (t *FunctionTable) Synonyms(name string) []string {
	ev, ok := t.Lookup(name)
	if !ok {
		return nil
	}
	var names []string
	t.table.Range(func(k string, v *Evaluator) bool {
		if v == ev {
			names = append(names, k)
		}
		return true
	})
	sort.Strings(names)
	return names
}

// Len returns the number of registered names.
func (t *FunctionTable) Len() int {
	if t == nil || t.table == nil {
		return 0
	}
	return t.table.Len()
}

// With returns a copy of the table that also maps name to ev.
func (t *FunctionTable) With(name string, ev *Evaluator) *FunctionTable {
	return &FunctionTable{table: t.snapshot().With(name, ev)}
}

// Without returns a copy of the table lacking name.
func (t *FunctionTable) Without(name string) *FunctionTable {
	return &FunctionTable{table: t.snapshot().Without(name)}
}

// Alias returns a copy of the table in which alias resolves to the same
// evaluator as target.
func (t *FunctionTable) Alias(alias, target string) (*FunctionTable, error) {
	ev, ok := t.Lookup(target)
	if !ok {
		return nil, fmt.Errorf("alias %q: %w", alias, &UnknownFunctionError{Name: target})
	}
	return t.With(alias, ev), nil
}

func (t *FunctionTable) snapshot() *registry.Table[string, *Evaluator] {
	if t == nil || t.table == nil {
		return &registry.Table[string, *Evaluator]{}
	}
	return t.table
}
