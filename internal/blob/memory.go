package blob

import (
	memorystore "ifcqa/internal/infra/blob/memory"
)

// NewMemory returns an in-memory Store suitable for tests and dry runs.
func NewMemory() Store { return memorystore.New() }
