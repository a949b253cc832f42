// Package testinfra starts throwaway MongoDB containers for integration
// tests. Everything else in the package builds only with the integration
// tag:
//
//	go test -tags integration ./...
package testinfra
