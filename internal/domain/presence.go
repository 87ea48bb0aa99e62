package domain

// PresenceEntry is the ephemeral typing broadcast payload. It is never
// persisted; receivers only ever look at the latest entry per participant.
type PresenceEntry struct {
	UserID string `json:"user_id"`
	Typing bool   `json:"typing"`
}
