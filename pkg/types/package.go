package types

import (
	"path/filepath"
	"sort"
)

// File extensions of the two halves of a package pair
const (
	PackageDataExt  = ".pkg"
	PackageIndexExt = ".hed"
)

// PackageID names one archive pair: an index file (<id>.hed) and a data
// file (<id>.pkg) that always travel together.
type PackageID string

// String returns the package id as a plain string
func (p PackageID) String() string {
	return string(p)
}

// DataFile returns the name of the package's data file
func (p PackageID) DataFile() string {
	return string(p) + PackageDataExt
}

// IndexFile returns the name of the package's index file
func (p PackageID) IndexFile() string {
	return string(p) + PackageIndexExt
}

// Pair returns the data and index file paths of the package inside dir.
// Callers copy both or neither.
func (p PackageID) Pair(dir string) (data, index string) {
	return filepath.Join(dir, p.DataFile()), filepath.Join(dir, p.IndexFile())
}

// SortPackageIDs sorts ids in place and returns them
func SortPackageIDs(ids []PackageID) []PackageID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
