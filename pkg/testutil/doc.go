// Package testutil provides utilities for testing khbuild components.
//
// Key components:
//   - TestEnvironment: a game install, an OpenKH directory with its mod
//     tree, a work directory and a patches directory, either in memory or
//     in a temp directory
//   - WriteZip: builds patch archives with ordered entries
//   - FakeRunner: records packaging tool invocations
//
// Usage guidelines:
//   - Most tests should use EnvMemoryOnly for speed and isolation
//   - Tests that execute a real process use EnvIsolated
//   - All test data should be defined inline, not in external files
package testutil
