// Package config provides the maxedu CLI configuration.
//
//   - spec.go: CLIConfig struct (~/.maxedu/cli.yaml)
//   - loader.go: loading through confloader, saving, validation
package config
