// Package output renders command results for maxedu.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned tables, built explicitly or from structs
//   - json.go, yaml.go: machine-readable output
//   - progress.go: inline progress bars for course completion and fees
//   - spinner.go: activity indicator for slow requests
package output
