//go:build tools

package tools

// Mocks under pkg/*/mocks are generated by mockery from .mockery.yaml.
// mockery is used as an installed binary, so no import is tracked here.
// Run: mockery (from the repository root).
