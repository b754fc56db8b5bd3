package public

import "github.com/smartskincare/api/internal/provider"

// Handler serves the storefront and member-facing API.
type Handler struct {
	*provider.Container
}

// New creates the storefront handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
