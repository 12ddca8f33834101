package handler

import "net/http"

// Contacts serves the address book.
func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.Contacts().All())
}
