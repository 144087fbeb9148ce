// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Explicit overrides (command-line flags)
//  2. Environment variables (MAXEDU_ prefix, "__" separates levels)
//  3. Configuration file (YAML)
//  4. Defaults
//
// Watcher reports changes to a configuration file so long-running
// processes can re-apply the settings that support it.
package confloader
