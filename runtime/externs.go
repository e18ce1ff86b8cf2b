// Package runtime holds the small fixed set of C runtime functions the
// generated code may call directly without the source program declaring
// them itself: `printf` (backing `print`/`dbgprint`), and `GC_malloc`/
// `GC_free` (backing `box`/`drop` when the target configuration uses the
// Boehm collector rather than the system allocator), grounded on
// original_source/src/ca_runtime.cpp and the lazy extern-declaration
// behavior in original_source/ca.c.
package runtime

// Extern describes one C function the backend may need to declare before
// it is first called. Declarations are emitted lazily — only functions a
// given compilation unit actually calls end up in its output — matching
// the "declare on first use" behavior of the original's extern_flag.
type Extern struct {
	Name     string
	ArgTypes []string // typeids, spec's signature-string form
	RetType  string
	Variadic bool
}

// Externs is the registry of runtime functions package lower may call
// into directly. It is a plain slice rather than a map: the set is small
// and fixed, and iteration order matters for deterministic `-ll`/`-S`
// output ordering.
var Externs = []Extern{
	{Name: "printf", ArgTypes: []string{"t:*i8"}, RetType: "t:i32", Variadic: true},
	{Name: "GC_malloc", ArgTypes: []string{"t:u64"}, RetType: "t:*void"},
	{Name: "GC_free", ArgTypes: []string{"t:*void"}, RetType: "t:void"},
}

// Lookup returns the Extern descriptor for name, or ok=false if name is not
// one of the fixed runtime externs.
func Lookup(name string) (Extern, bool) {
	for _, e := range Externs {
		if e.Name == name {
			return e, true
		}
	}
	return Extern{}, false
}

// Registry tracks which externs a single compilation unit has actually
// referenced, so the backend emits a declaration for each at most once
// and only for the ones it used.
type Registry struct {
	used map[string]bool
}

// NewRegistry creates an empty per-compilation extern-usage tracker.
func NewRegistry() *Registry { return &Registry{used: make(map[string]bool)} }

// Use records that name was referenced, returning the Extern descriptor.
// It panics if name isn't a known runtime extern — a caller asking the
// runtime registry about a symbol that isn't one is a compiler bug.
func (r *Registry) Use(name string) Extern {
	e, ok := Lookup(name)
	if !ok {
		panic("runtime: unknown extern " + name)
	}
	r.used[name] = true
	return e
}

// Used returns the externs referenced so far, in Externs' fixed order
// (deterministic output).
func (r *Registry) Used() []Extern {
	var out []Extern
	for _, e := range Externs {
		if r.used[e.Name] {
			out = append(out, e)
		}
	}
	return out
}
