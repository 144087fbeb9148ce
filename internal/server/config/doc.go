// Package config defines the configuration of the serve gateway.
package config
