package deliveryhttp

import "github.com/go-chi/chi/v5"

// MountRoutes registers delivery routes under the caller's prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/", h.create)
	r.Get("/suggestions", h.suggestions)

	r.Post("/selection", h.selectAll)
	r.Post("/selection/{id}", h.toggleSelection)

	r.Post("/manifest", h.manifest)
	r.Get("/manifest/archive", h.archivedManifest)

	r.Post("/{id}", h.update)
	r.Get("/{id}/delete", h.confirmDelete)
	r.Post("/{id}/delete", h.delete)
	r.Get("/{id}/order.pdf", h.transportOrder)
}
