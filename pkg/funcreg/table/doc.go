// Package table provides the in-memory state owned by a function registry:
// the function metadata table and the package checksum index.
//
// Neither type synchronizes access. Both are owned by a funcreg.Registry and
// are only touched while the registry lock is held, so that a validate-then-
// register sequence observes a single consistent view.
//
// # Function Table
//
// FunctionTable maps a function name to its FunctionInfo. Names are matched
// exactly; Add refuses to overwrite an existing entry:
//
//	functions := table.NewFunctionTable()
//	ok := functions.Add(table.FunctionInfo{
//	    Name:            "sum",
//	    EntryPoint:      "org.example.Sum",
//	    PackageName:     "sum.jar",
//	    PackageChecksum: "abc",
//	})
//
// # Checksum Index
//
// ChecksumIndex maps a package name to the content checksum it was first
// registered with. A package name keeps the same checksum for the lifetime of
// the registry:
//
//	index := table.NewChecksumIndex()
//	index.Put("sum.jar", "abc")
//	index.Conflicts("sum.jar", "xyz") // true
package table
