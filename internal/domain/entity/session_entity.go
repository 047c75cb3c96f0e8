package entity

import (
	"encoding/json"
	"time"
)

// Identity is the authenticated subject persisted in a session.
type Identity struct {
	ID    string
	Email string
	Role  Role
}

// Session is a time-bounded proof of authentication for one device.
// Role is the value at login time and is only used for display.
type Session struct {
	ID        string
	Email     string
	Role      Role
	ExpiresAt time.Time
	Token     string
}

// IsExpired reports whether the session is no longer valid at now.
func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s Session) Identity() Identity {
	return Identity{ID: s.ID, Email: s.Email, Role: s.Role}
}

type sessionRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	ExpiresAt    int64  `json:"expiresAt"`
	SessionToken string `json:"sessionToken"`
}

// MarshalJSON writes the persisted session format with expiresAt in epoch millis.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionRecord{
		ID:           s.ID,
		Email:        s.Email,
		Role:         s.Role,
		ExpiresAt:    s.ExpiresAt.UnixMilli(),
		SessionToken: s.Token,
	})
}

func (s *Session) UnmarshalJSON(b []byte) error {
	var rec sessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	*s = Session{
		ID:        rec.ID,
		Email:     rec.Email,
		Role:      rec.Role,
		ExpiresAt: time.UnixMilli(rec.ExpiresAt).UTC(),
		Token:     rec.SessionToken,
	}
	return nil
}
