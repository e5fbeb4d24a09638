package table

import (
	"bytes"
	"maps"
)

// FunctionInfo describes one registered function.
// It is never mutated after registration.
type FunctionInfo struct {
	// Name is the unique function name. Matched exactly.
	Name string `json:"name"`

	// EntryPoint is the implementation entry point inside the package,
	// such as a fully qualified class name.
	EntryPoint string `json:"entry_point"`

	// PackageName identifies the binary package backing the function.
	PackageName string `json:"package_name"`

	// PackageChecksum is the content digest of the package, computed by the caller.
	PackageChecksum string `json:"package_checksum"`

	// Attributes carries implementation-specific metadata unchanged.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Payload carries an opaque implementation-specific blob unchanged.
	Payload []byte `json:"payload,omitempty"`
}

// Clone returns a deep copy so callers cannot alias table state.
func (f FunctionInfo) Clone() FunctionInfo {
	out := f
	if f.Attributes != nil {
		out.Attributes = maps.Clone(f.Attributes)
	}
	if f.Payload != nil {
		out.Payload = bytes.Clone(f.Payload)
	}
	return out
}

// Equal reports whether two records carry the same values.
func (f FunctionInfo) Equal(other FunctionInfo) bool {
	return f.Name == other.Name &&
		f.EntryPoint == other.EntryPoint &&
		f.PackageName == other.PackageName &&
		f.PackageChecksum == other.PackageChecksum &&
		maps.Equal(f.Attributes, other.Attributes) &&
		bytes.Equal(f.Payload, other.Payload)
}

// FunctionTable maps function names to their metadata.
type FunctionTable struct {
	m *Map[string, FunctionInfo]
}

// NewFunctionTable creates an empty function table.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{m: NewMap[string, FunctionInfo]()}
}

// Add inserts info under info.Name. It returns false and leaves the table
// unchanged if the name is already taken.
func (t *FunctionTable) Add(info FunctionInfo) bool {
	if t.m.Has(info.Name) {
		return false
	}
	t.m.Put(info.Name, info.Clone())
	return true
}

// Get returns a copy of the metadata registered under name.
func (t *FunctionTable) Get(name string) (FunctionInfo, bool) {
	info, ok := t.m.Get(name)
	if !ok {
		return FunctionInfo{}, false
	}
	return info.Clone(), true
}

// Contains returns true if a function with this exact name exists.
func (t *FunctionTable) Contains(name string) bool {
	return t.m.Has(name)
}

// Remove deletes the entry for name and returns the removed record.
func (t *FunctionTable) Remove(name string) (FunctionInfo, bool) {
	info, ok := t.m.Get(name)
	if !ok {
		return FunctionInfo{}, false
	}
	t.m.Delete(name)
	return info, true
}

// All returns copies of every record, ordered by name.
func (t *FunctionTable) All() []FunctionInfo {
	out := make([]FunctionInfo, 0, t.m.Len())
	t.m.Range(func(_ string, info FunctionInfo) bool {
		out = append(out, info.Clone())
		return true
	})
	return out
}

// ReferencedPackages returns the set of package names used by at least one function.
func (t *FunctionTable) ReferencedPackages() map[string]struct{} {
	out := make(map[string]struct{}, t.m.Len())
	t.m.Range(func(_ string, info FunctionInfo) bool {
		out[info.PackageName] = struct{}{}
		return true
	})
	return out
}

// Len returns the number of registered functions.
func (t *FunctionTable) Len() int {
	return t.m.Len()
}
