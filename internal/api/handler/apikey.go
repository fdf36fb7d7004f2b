package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/chainwatch/internal/api/middleware"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const keyPrefix = "cw_"

// APIKeyStore is the slice of the store the admin key handlers need.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id, tenantID uuid.UUID) error
}

// NewCreateKeyHandler mints an API key for POST /api/v1/admin/keys. The raw
// key appears in this response only; afterwards only the bcrypt hash exists.
func NewCreateKeyHandler(st APIKeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		var req struct {
			Name   string   `json:"name"`
			Scopes []string `json:"scopes"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}
		scopes := req.Scopes
		if len(scopes) == 0 {
			scopes = []string{"read"}
		}

		rawKey, err := generateRawKey()
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate key", nil)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash key", nil)
			return
		}

		now := time.Now().UTC()
		key := &models.APIKey{
			ID:        uuid.New(),
			TenantID:  tenantID,
			Name:      req.Name,
			KeyHash:   string(hash),
			KeyPrefix: rawKey[:8],
			Scopes:    scopes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := st.CreateAPIKey(r.Context(), key); err != nil {
			storeError(w, err, "")
			return
		}

		response.Created(w, map[string]any{
			"id":         key.ID,
			"name":       key.Name,
			"key":        rawKey,
			"key_prefix": key.KeyPrefix,
			"scopes":     key.Scopes,
			"created_at": key.CreatedAt,
		})
	}
}

func NewListKeysHandler(st APIKeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		keys, err := st.ListAPIKeys(r.Context(), tenantID)
		if err != nil {
			storeError(w, err, "")
			return
		}
		response.JSON(w, keys)
	}
}

func NewRevokeKeyHandler(st APIKeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		id, err := urlUUID(r, "keyID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid key ID", nil)
			return
		}
		if err := st.RevokeAPIKey(r.Context(), id, tenantID); err != nil {
			storeError(w, err, "API key not found")
			return
		}
		response.NoContent(w)
	}
}

func generateRawKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s", keyPrefix, hex.EncodeToString(buf)), nil
}
