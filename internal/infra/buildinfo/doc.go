// Package buildinfo exposes build information injected via ldflags:
//
//	go build -ldflags "-X github.com/harshitprakash/max-education-software-sub000/internal/infra/buildinfo.Version=1.0.0"
package buildinfo
