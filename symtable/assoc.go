package symtable

// AssocKind enumerates the association-overlay kinds. Generic is the only
// kind the core currently installs (binding `Self` and generic type
// parameters); the kind tag leaves room for others.
type AssocKind int

const (
	AssocNone AssocKind = iota
	AssocGeneric
)

// Assoc is a per-scope association overlay: lookups for any id in IDSet are
// redirected to Table before the normal parent-chain walk.
type Assoc struct {
	Kind  AssocKind
	Table *Scope
	IDSet map[string]bool
}

// NewAssoc creates an overlay of the given kind rooted at table
// ("new_assoc").
func NewAssoc(kind AssocKind, table *Scope) *Assoc {
	return &Assoc{Kind: kind, Table: table, IDSet: make(map[string]bool)}
}

// AssocAddItem redirects id through a ("assoc_add_item").
func AssocAddItem(a *Assoc, id string) { a.IDSet[id] = true }

// FreeAssoc releases an overlay ("free_assoc"); with Go's GC this is a
// no-op kept for symmetry with the two-phase install/uninstall pattern
// lowering uses around generic/trait instantiation.
func FreeAssoc(a *Assoc) { _ = a }

// SetAssoc installs overlay a on scope s.
func (s *Scope) SetAssoc(a *Assoc) { s.assoc = a }

// Assoc returns the overlay installed on s, or nil.
func (s *Scope) Assoc() *Assoc { return s.assoc }
