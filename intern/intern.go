// Package intern manages the process-wide string interner. Identifiers,
// label prefixes ("l:"), type-signature strings ("t:..."), and mangled
// function labels ("f:...") are all deduped through here and represented as
// small integer handles that stay stable for the lifetime of a single
// compilation.
//
// The interner is single-threaded: requires the whole core to run
// on one compiler goroutine, so there is no locking here, unlike the
// concurrent symbol table this package is modeled on.
package intern

import "fmt"

// ID is an interned handle. The zero value, Invalid, never names a real
// string.
type ID int32

// Invalid is the sentinel ID returned for lookups that fail.
const Invalid = ID(0)

// Table is an interner instance. A fresh Table is created per compilation;
// nothing here is process-global so tests can run independent compilations
// concurrently even though any single Table is not itself thread-safe.
type Table struct {
	byName map[string]ID
	names  []string // names[id] is the text for id; index 0 is unused
}

// New creates an empty interner with its backing slice pre-sized for a
// typical compilation unit's symbol count.
func New() *Table {
	t := &Table{
		byName: make(map[string]ID, 1024),
		names:  make([]string, 1, 1024),
	}
	t.names[0] = "(invalid)"
	return t
}

// Insert interns str unconditionally; if str was already interned, its
// existing ID is returned (Insert never creates a duplicate entry — the name
// comes from the original API's "no check" framing: the caller doesn't need
// to check first, not that duplicates are allowed).
func (t *Table) Insert(str string) ID {
	if id, ok := t.byName[str]; ok {
		return id
	}
	id := ID(len(t.names))
	t.names = append(t.names, str)
	t.byName[str] = id
	return id
}

// Check returns the ID for str if it has already been interned, without
// creating a new entry.
func (t *Table) Check(str string) (ID, bool) {
	id, ok := t.byName[str]
	return id, ok
}

// Get returns the text for a previously interned ID. It panics if id is out
// of range; that indicates a compiler bug, not a user error.
func (t *Table) Get(id ID) string {
	if int(id) <= 0 || int(id) >= len(t.names) {
		panic(fmt.Sprintf("intern: id %d out of range", id))
	}
	return t.names[id]
}

// FormTypeID returns the typeid for a bare type name, e.g. "AA" -> "t:AA".
func (t *Table) FormTypeID(name string) ID {
	return t.Insert("t:" + name)
}

// FormTypeIDByStr is an alias of FormTypeID kept for readers coming from the
// original naming (form_type_id_by_str); "i32" -> "t:i32".
func (t *Table) FormTypeIDByStr(name string) ID {
	return t.FormTypeID(name)
}

// FormPointerID returns the typeid for a pointer to the type named by inner,
// e.g. FormPointerID("t:i32") -> "t:*i32".
func (t *Table) FormPointerID(innerTypeID ID) ID {
	inner := t.Get(innerTypeID)
	return t.Insert("t:*" + stripTPrefix(inner))
}

// FormArrayID returns the typeid for an array of n elements of the type
// named by inner, e.g. FormArrayID("t:i32", 3) -> "t:[i32;3]".
func (t *Table) FormArrayID(innerTypeID ID, n uint64) ID {
	inner := t.Get(innerTypeID)
	return t.Insert(fmt.Sprintf("t:[%s;%d]", stripTPrefix(inner), n))
}

// FormTupleID returns the typeid for a general (unnamed) tuple of the given
// member types.
func (t *Table) FormTupleID(members []ID) ID {
	s := "t:(;"
	for i, m := range members {
		if i > 0 {
			s += ","
		}
		s += stripTPrefix(t.Get(m))
	}
	return t.Insert(s + ")")
}

// FormFunctionID builds the interned label for a top-level function, "f:name".
func (t *Table) FormFunctionID(name string) ID {
	return t.Insert("f:" + name)
}

// FormMethodID builds the interned label for a struct or trait method,
// mirroring the mangling scheme implemented fully in package resolver: this
// helper only combines the already-mangled pieces into one interned string.
func (t *Table) FormMethodID(fn, class string, trait string) ID {
	if trait == "" {
		return t.Insert(fmt.Sprintf("f:SF%s_%s", class, fn))
	}
	return t.Insert(fmt.Sprintf("f:TSF%d%s%d%s_%s", len(trait), trait, len(class), class, fn))
}

// FormLabelID builds the interned label for a goto/label target scoped by an
// owning function label.
func (t *Table) FormLabelID(fnLabel string, name string) ID {
	return t.Insert(fmt.Sprintf("l:%s.%s", fnLabel, name))
}

// FormSymtableTypeID builds a scope-keyed cache key, combining an opaque
// scope identity with a typeid so catype_get_by_name can cache per (scope,
// typeid) pair. scopeKey should be a value that is unique per scope object
// (symtable assigns one sequentially).
func (t *Table) FormSymtableTypeID(scopeKey int64, typeid ID) string {
	return fmt.Sprintf("%d#%d", scopeKey, typeid)
}

func stripTPrefix(s string) string {
	if len(s) >= 2 && s[0] == 't' && s[1] == ':' {
		return s[2:]
	}
	return s
}
