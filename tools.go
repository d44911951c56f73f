//go:build tools

// Package tools pins build-time tool dependencies so `go generate` works
// from a fresh checkout.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
