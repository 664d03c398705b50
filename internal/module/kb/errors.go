package kb

import (
	"fmt"

	apperrors "github.com/deskgate/server/internal/shared/errors"
)

// Module errors.
var (
	ErrQueryTooShort    = fmt.Errorf("search query too short: %w", apperrors.ErrInvalidArgument)
	ErrInvalidArticleID = fmt.Errorf("article id must be positive: %w", apperrors.ErrInvalidArgument)
	ErrArticleNotFound  = fmt.Errorf("article not found: %w", apperrors.ErrNotFound)
)
