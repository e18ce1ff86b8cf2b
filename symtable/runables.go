package symtable

// MethodImpl records one method as actually implemented (directly on a
// struct, or via a trait impl): its source name, its mangled backend label,
// and the function-table entry that backs it.
type MethodImpl struct {
	FnName  string
	Mangled string
	Entry   *FnEntry
}

// Runables is the per-struct impl table:
// methods defined directly on the struct, methods defined via trait impls
// (keyed by trait id then method name), and the association overlay
// recorded per (trait, method) pair so a trait's default-method body can be
// re-walked with `Self` bound to this struct.
type Runables struct {
	MethodsInStruct map[string]*MethodImpl
	MethodsInTraits map[string]map[string]*MethodImpl
	AssocByTrait    map[string]map[string]*Assoc
}

// NewRunables creates an empty struct-impl table.
func NewRunables() *Runables {
	return &Runables{
		MethodsInStruct: make(map[string]*MethodImpl),
		MethodsInTraits: make(map[string]map[string]*MethodImpl),
		AssocByTrait:    make(map[string]map[string]*Assoc),
	}
}

// AddStructMethod installs a method defined directly in an "impl Type {...}"
// block.
func (r *Runables) AddStructMethod(name string, m *MethodImpl) {
	r.MethodsInStruct[name] = m
}

// AddTraitMethod installs a method coming from an "impl Trait for Type
// {...}" block, whether overridden in the impl or inherited from the
// trait's default body.
func (r *Runables) AddTraitMethod(traitID, name string, m *MethodImpl, assoc *Assoc) {
	byName, ok := r.MethodsInTraits[traitID]
	if !ok {
		byName = make(map[string]*MethodImpl)
		r.MethodsInTraits[traitID] = byName
	}
	byName[name] = m
	assocByName, ok := r.AssocByTrait[traitID]
	if !ok {
		assocByName = make(map[string]*Assoc)
		r.AssocByTrait[traitID] = assocByName
	}
	assocByName[name] = assoc
}

// Lookup resolves a method call by name, checking methods-in-struct first
// and then every trait impl. It reports ambiguity (method resolvable via
// more than one trait, none found directly on the struct) by returning all
// matching trait ids so the caller can build the "multiple applicable
// items" diagnostic.
func (r *Runables) Lookup(name string) (m *MethodImpl, assoc *Assoc, traitMatches []string) {
	if direct, ok := r.MethodsInStruct[name]; ok {
		return direct, nil, nil
	}
	var matches []string
	var found *MethodImpl
	var foundAssoc *Assoc
	for traitID, byName := range r.MethodsInTraits {
		if mi, ok := byName[name]; ok {
			matches = append(matches, traitID)
			found = mi
			foundAssoc = r.AssocByTrait[traitID][name]
		}
	}
	if len(matches) == 1 {
		return found, foundAssoc, nil
	}
	if len(matches) > 1 {
		return nil, nil, matches
	}
	return nil, nil, nil
}
