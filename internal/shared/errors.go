package shared

import (
	"fmt"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
)

var (
	ErrNotFound           = fmt.Errorf("account %w", httpx.ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", httpx.ErrUnauthorized)
	ErrCSRFTokenMissing   = fmt.Errorf("csrf token missing: %w", httpx.ErrForbidden)
	ErrCSRFTokenMismatch  = fmt.Errorf("csrf token mismatch: %w", httpx.ErrForbidden)
)
