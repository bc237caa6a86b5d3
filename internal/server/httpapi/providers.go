package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophprovider/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	list, err := h.providers.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getProvider(w http.ResponseWriter, r *http.Request) {
	p, err := h.providers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createProvider(w http.ResponseWriter, r *http.Request) {
	var in services.ProviderInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.providers.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/provider/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProvider(w http.ResponseWriter, r *http.Request) {
	var in services.ProviderInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.providers.Update(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteProvider(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.providers.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	cs, _ := ClaimsFromContext(r.Context())
	h.log.Info(r.Context(), "provider deleted", "provider_id", id, "user_id", cs.UserID)
	w.WriteHeader(http.StatusNoContent)
}
