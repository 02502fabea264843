// Package types defines the core types and interfaces shared by the
// khbuild components: the filesystem abstraction, package identifiers,
// discovered mod files, patch archive entries and run reports.
package types
