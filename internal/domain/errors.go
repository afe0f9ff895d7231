package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Profile errors
	ErrInvalidProfile = errors.New("invalid profile name")

	// Award errors. The engine awards 0 XP for unknown types; front ends
	// return this to reject them before they reach the engine.
	ErrUnknownEventType = errors.New("unknown xp event type")

	// Storage errors
	ErrStoreUnavailable = errors.New("state store is unavailable")
	ErrUnknownBackend   = errors.New("unknown storage backend")
	ErrVersionConflict  = errors.New("state was modified concurrently")
)
