// Package idgen generates ExecIDs (FIX tag 17). The teacher generates
// order/trade IDs with google/uuid throughout internal/core; executions
// follow the same pattern.
package idgen

import "github.com/google/uuid"

// ExecID returns a fresh, globally unique execution identifier.
func ExecID() string {
	return uuid.NewString()
}
