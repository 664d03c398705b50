package session

import (
	"fmt"

	apperrors "github.com/deskgate/server/internal/shared/errors"
)

// Module errors.
var (
	ErrInvalidToken  = fmt.Errorf("invalid or expired session token: %w", apperrors.ErrUnauthorized)
	ErrMissingToken  = fmt.Errorf("session token required: %w", apperrors.ErrUnauthorized)
	ErrEmptySubject  = fmt.Errorf("token subject required: %w", apperrors.ErrInvalidArgument)
	ErrAdminRequired = fmt.Errorf("admin access required: %w", apperrors.ErrForbidden)
)
