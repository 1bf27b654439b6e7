package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateInstanceIdentifier returns a human-readable identifier for a task
// instance, e.g. "TI-3F2A91C4".
func GenerateInstanceIdentifier() string {
	id := uuid.New()
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return fmt.Sprintf("TI-%s", hex[:8])
}

// GenerateProcessIdentifier returns an identifier for a task template,
// e.g. "PROC-8D41B0E2".
func GenerateProcessIdentifier() string {
	id := uuid.New()
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return fmt.Sprintf("PROC-%s", hex[:8])
}
