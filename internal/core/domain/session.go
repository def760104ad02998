package domain

import "time"

// Session is one login window for a user. Sessions are never deleted; a
// session with LogoutAt set is terminal for authorization.
type Session struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	LoginAt       time.Time  `json:"loginAt"`
	LastActivity  time.Time  `json:"lastActivity"`
	LogoutAt      *time.Time `json:"logoutAt,omitempty"`
	SourceAddress string     `json:"sourceAddress"`
}

// Active reports whether the session has not been ended.
func (s *Session) Active() bool {
	return s.LogoutAt == nil
}
