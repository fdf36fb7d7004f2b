// Package handler contains the http.HandlerFunc constructors wired into the
// router. Each handler depends on the narrowest store surface it needs.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/internal/store"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// urlUUID parses a chi URL parameter as a UUID.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// decodeBody decodes a JSON request body into dst. A bad body is reported
// to the client; the caller only has to bail out.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return false
	}
	return true
}

// storeError maps store sentinels onto API error responses.
func storeError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", notFoundMsg, nil)
	case errors.Is(err, store.ErrDuplicateKey):
		response.Error(w, http.StatusConflict, "DUPLICATE", "Resource already exists", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

// pageQuery reads page/limit query parameters with the same clamping the
// store applies, so pagination meta reflects what was actually queried.
func pageQuery(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func pagination(page, limit, total int) response.PaginationMeta {
	return response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: page*limit < total,
	}
}
