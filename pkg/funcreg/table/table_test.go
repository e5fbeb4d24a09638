package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumInfo() FunctionInfo {
	return FunctionInfo{
		Name:            "sum",
		EntryPoint:      "org.example.Sum",
		PackageName:     "sum.jar",
		PackageChecksum: "abc",
		Attributes:      map[string]string{"type": "udaf"},
		Payload:         []byte{1, 2, 3},
	}
}

func TestFunctionTableAddRejectsDuplicate(t *testing.T) {
	ft := NewFunctionTable()

	require.True(t, ft.Add(sumInfo()))

	other := sumInfo()
	other.PackageName = "other.jar"
	assert.False(t, ft.Add(other))

	got, ok := ft.Get("sum")
	require.True(t, ok)
	assert.Equal(t, "sum.jar", got.PackageName)
}

func TestFunctionTableExactNameMatch(t *testing.T) {
	ft := NewFunctionTable()
	require.True(t, ft.Add(sumInfo()))

	upper := sumInfo()
	upper.Name = "SUM"
	assert.True(t, ft.Add(upper))
	assert.Equal(t, 2, ft.Len())
	assert.False(t, ft.Contains("Sum"))
}

func TestFunctionTableIsolatesCallerState(t *testing.T) {
	ft := NewFunctionTable()
	info := sumInfo()
	require.True(t, ft.Add(info))

	info.Attributes["type"] = "mutated"
	info.Payload[0] = 9

	got, ok := ft.Get("sum")
	require.True(t, ok)
	assert.Equal(t, "udaf", got.Attributes["type"])
	assert.Equal(t, byte(1), got.Payload[0])

	got.Attributes["type"] = "again"
	again, _ := ft.Get("sum")
	assert.Equal(t, "udaf", again.Attributes["type"])
}

func TestFunctionTableRemove(t *testing.T) {
	ft := NewFunctionTable()
	require.True(t, ft.Add(sumInfo()))

	removed, ok := ft.Remove("sum")
	assert.True(t, ok)
	assert.Equal(t, "sum.jar", removed.PackageName)

	_, ok = ft.Remove("sum")
	assert.False(t, ok)
	assert.Equal(t, 0, ft.Len())
}

func TestFunctionTableAllOrderedAndReferencedPackages(t *testing.T) {
	ft := NewFunctionTable()
	for _, name := range []string{"max", "avg", "sum"} {
		info := sumInfo()
		info.Name = name
		require.True(t, ft.Add(info))
	}
	extra := sumInfo()
	extra.Name = "geo"
	extra.PackageName = "geo.jar"
	require.True(t, ft.Add(extra))

	all := ft.All()
	require.Len(t, all, 4)
	assert.Equal(t, "avg", all[0].Name)
	assert.Equal(t, "geo", all[1].Name)
	assert.Equal(t, "max", all[2].Name)
	assert.Equal(t, "sum", all[3].Name)

	refs := ft.ReferencedPackages()
	assert.Len(t, refs, 2)
	assert.Contains(t, refs, "sum.jar")
	assert.Contains(t, refs, "geo.jar")
}

func TestFunctionInfoEqual(t *testing.T) {
	a := sumInfo()
	b := sumInfo()
	assert.True(t, a.Equal(b))

	b.Payload = []byte{1, 2, 4}
	assert.False(t, a.Equal(b))
}

func TestChecksumIndex(t *testing.T) {
	idx := NewChecksumIndex()
	assert.False(t, idx.Contains("sum.jar"))
	assert.False(t, idx.Conflicts("sum.jar", "abc"))

	idx.Put("sum.jar", "abc")
	idx.Put("geo.jar", "def")

	sum, ok := idx.Lookup("sum.jar")
	assert.True(t, ok)
	assert.Equal(t, "abc", sum)
	assert.False(t, idx.Conflicts("sum.jar", "abc"))
	assert.True(t, idx.Conflicts("sum.jar", "xyz"))

	assert.Equal(t, []string{"geo.jar", "sum.jar"}, idx.Packages())
	assert.Equal(t, map[string]string{"sum.jar": "abc", "geo.jar": "def"}, idx.Entries())
	assert.Equal(t, 2, idx.Len())
}
