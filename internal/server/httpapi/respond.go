package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophprovider/internal/common"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Messages returned by /login; clients match on them.
const (
	msgInvalidCredentials = "User or Password invalid"
	msgLockedOut          = "The user is blocked"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationProblem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeValidationProblem(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, validationProblem{
		Title:  "One or more validation errors occurred.",
		Status: http.StatusBadRequest,
		Errors: fields,
	})
}

// writeError maps service errors to HTTP responses. Anything unrecognised is
// logged and answered with a bare 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeValidationProblem(w, ve.Fields)
	case errors.Is(err, common.ErrConflict):
		writeValidationProblem(w, map[string][]string{"email": {"is already taken"}})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusBadRequest, msgInvalidCredentials)
	case errors.Is(err, common.ErrLockedOut):
		writeErrorMessage(w, http.StatusBadRequest, msgLockedOut)
	case errors.Is(err, common.ErrorNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, errBadBody):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

var errBadBody = errors.New("invalid request body")

// decodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields and oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errBadBody)
	}
	return nil
}
