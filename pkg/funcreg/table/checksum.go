package table

// ChecksumIndex maps package names to the checksum they were stored with.
type ChecksumIndex struct {
	m *Map[string, string]
}

// NewChecksumIndex creates an empty checksum index.
func NewChecksumIndex() *ChecksumIndex {
	return &ChecksumIndex{m: NewMap[string, string]()}
}

// Put records the checksum for a package.
func (c *ChecksumIndex) Put(packageName, checksum string) {
	c.m.Put(packageName, checksum)
}

// Lookup returns the checksum on record for a package.
func (c *ChecksumIndex) Lookup(packageName string) (string, bool) {
	return c.m.Get(packageName)
}

// Contains returns true if any checksum is on record for the package.
func (c *ChecksumIndex) Contains(packageName string) bool {
	return c.m.Has(packageName)
}

// Conflicts returns true if the package is on record with a different checksum.
func (c *ChecksumIndex) Conflicts(packageName, checksum string) bool {
	existing, ok := c.m.Get(packageName)
	return ok && existing != checksum
}

// Entries returns a copy of the index as a plain map.
func (c *ChecksumIndex) Entries() map[string]string {
	out := make(map[string]string, c.m.Len())
	c.m.Range(func(k, v string) bool {
		out[k] = v
		return true
	})
	return out
}

// Packages returns all package names in ascending order.
func (c *ChecksumIndex) Packages() []string {
	return c.m.Keys()
}

// Len returns the number of packages on record.
func (c *ChecksumIndex) Len() int {
	return c.m.Len()
}
