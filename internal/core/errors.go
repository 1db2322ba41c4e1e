package core

import "errors"

var (
	// ErrGeneration marks a failed call to the text generation provider.
	ErrGeneration = errors.New("generation failed")

	ErrInvalidMemoryInput = errors.New("invalid memory input")
	ErrInvalidSearchInput = errors.New("invalid search input")

	// ErrAddMemory and ErrSearchMemories prefix every storage and search
	// failure so callers see one failure mode per operation.
	ErrAddMemory      = errors.New("failed to add memory")
	ErrSearchMemories = errors.New("failed to search memories")

	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrDuplicateMemory   = errors.New("duplicate memory")
)
