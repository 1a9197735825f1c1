// Package registry provides generic name tables for values indexed by key.
//
// Two types cover the two phases of a table's life:
//
//   - Registry is the mutable builder. It is thread-safe, uses sync.RWMutex
//     for read-heavy workloads and supports lazy GetOrCreate.
//   - Table is an immutable snapshot produced by Registry.Freeze. It needs no
//     locking and is safe to share between goroutines for its whole lifetime.
//
// # Building a Table
//
//	r := registry.New[string, *Evaluator]()
//	r.Register("+", add)
//	r.Register("add", add)
//	table := r.Freeze()
//
//	ev, ok := table.Get("add")
//
// Later changes to r do not affect table. Deriving a variant never mutates
// the original either:
//
//	extended := table.With("double", double)
//
// # Lazy Initialization
//
// Use GetOrCreate for thread-safe memoization:
//
//	tags := registry.New[string, language.Tag]()
//	tag := tags.GetOrCreate("tr-TR", func() language.Tag {
//	    return language.Make("tr-TR")
//	})
//
// GetOrCreate is atomic - the factory function is called at most once per key,
// even under concurrent access.
package registry
