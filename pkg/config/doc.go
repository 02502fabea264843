// Package config handles configuration management for khbuild.
//
// Settings are layered, later sources winning:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file, $XDG_CONFIG_HOME/khbuild/config.toml or KHBUILD_CONFIG
//  3. KHBUILD_<SECTION>_<KEY> environment variables
//  4. command line flags that were set explicitly
package config
