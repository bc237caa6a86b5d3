package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listDishes(w http.ResponseWriter, r *http.Request) {
	list, err := h.dishes.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getDish(w http.ResponseWriter, r *http.Request) {
	d, err := h.dishes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) getDishByName(w http.ResponseWriter, r *http.Request) {
	d, err := h.dishes.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) listIngredients(w http.ResponseWriter, r *http.Request) {
	list, err := h.dishes.Ingredients(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
