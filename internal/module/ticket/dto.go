package ticket

// CreateTicketInput is the payload for creating a ticket.
type CreateTicketInput struct {
	Subject       string `json:"subject" binding:"required"`
	Description   string `json:"description"`
	RequestTypeID int64  `json:"request_type_id"`
}

// Validate checks the input before any upstream call.
func (in *CreateTicketInput) Validate() error {
	if in.Subject == "" {
		return ErrSubjectRequired
	}
	return nil
}

// ReplyInput is the payload for appending a reply to a ticket.
type ReplyInput struct {
	Body string `json:"body" binding:"required"`
}

// Validate checks the input before any upstream call.
func (in *ReplyInput) Validate() error {
	if in.Body == "" {
		return ErrBodyRequired
	}
	return nil
}

// ListQuery is the server-side filter passed to the upstream client.
type ListQuery struct {
	UserID   string
	Category StatusCategory
	Year     int
}
