package handlers

import "github.com/go-chi/chi/v5"

// Mountable is a feature handler that registers its routes on a router.
type Mountable interface {
	Mount(r chi.Router)
}
