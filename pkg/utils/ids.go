package utils

import "github.com/google/uuid"

// Identifiers are UUIDv4 generated in-process so their format is not
// coupled to any store's native generator. Clients never supply ids.

// GenThreadID returns a fresh thread identifier.
func GenThreadID() string { return uuid.NewString() }

// GenPostID returns a fresh post identifier.
func GenPostID() string { return uuid.NewString() }
