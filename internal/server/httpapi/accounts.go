package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophprovider/internal/server/models"
	"github.com/dmitrijs2005/gophprovider/internal/server/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userTokenResponse struct {
	ID     string         `json:"id"`
	Email  string         `json:"email"`
	Claims []models.Claim `json:"claims"`
}

type tokenResponse struct {
	AccessToken string            `json:"accessToken"`
	ExpiresIn   int64             `json:"expiresIn"`
	UserToken   userTokenResponse `json:"userToken"`
}

func newTokenResponse(t *services.Token) tokenResponse {
	claims := t.User.Claims
	if claims == nil {
		claims = []models.Claim{}
	}
	return tokenResponse{
		AccessToken: t.AccessToken,
		ExpiresIn:   int64(t.ExpiresIn.Seconds()),
		UserToken: userTokenResponse{
			ID:     t.User.ID,
			Email:  t.User.Email,
			Claims: claims,
		},
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	tok, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(tok))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	tok, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(tok))
}
