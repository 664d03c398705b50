package session

// Identity is the widget user on whose behalf DeskGate talks to the
// helpdesk. The subject is the upstream requester ID and scopes every
// per-user cache key.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}
