package ticket

import (
	"fmt"

	apperrors "github.com/deskgate/server/internal/shared/errors"
)

// Module errors. Each wraps the shared taxonomy so handlers resolve
// the HTTP status with errors.Is alone.
var (
	ErrTicketNotFound  = fmt.Errorf("ticket not found: %w", apperrors.ErrNotFound)
	ErrTicketForbidden = fmt.Errorf("ticket access denied: %w", apperrors.ErrForbidden)
	ErrTicketClosed    = fmt.Errorf("ticket already closed: %w", apperrors.ErrConflict)

	ErrInvalidCategory = fmt.Errorf("unknown status category: %w", apperrors.ErrInvalidArgument)
	ErrInvalidTicketID = fmt.Errorf("ticket id must be positive: %w", apperrors.ErrInvalidArgument)
	ErrSubjectRequired = fmt.Errorf("subject required: %w", apperrors.ErrInvalidArgument)
	ErrBodyRequired    = fmt.Errorf("message body required: %w", apperrors.ErrInvalidArgument)
)
