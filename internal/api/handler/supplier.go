package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/chainwatch/internal/api/middleware"
	"github.com/kiranshivaraju/chainwatch/internal/api/response"
	"github.com/kiranshivaraju/chainwatch/internal/store"
	"github.com/kiranshivaraju/chainwatch/pkg/models"
)

const maxImportRows = 1000

// SupplierStore is the slice of the store the supplier handlers need.
// Suppliers are always scoped to the authenticated tenant.
type SupplierStore interface {
	CreateSupplier(ctx context.Context, sp *models.Supplier) error
	GetSupplier(ctx context.Context, id, tenantID uuid.UUID) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, tenantID uuid.UUID) ([]*models.Supplier, error)
	UpdateSupplier(ctx context.Context, sp *models.Supplier) error
	DeleteSupplier(ctx context.Context, id, tenantID uuid.UUID) error
}

type supplierRequest struct {
	Name        string  `json:"name"`
	Location    *string `json:"location"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
	Region      *string `json:"region"`
	Commodities *string `json:"commodities"`
}

func NewListSuppliersHandler(st SupplierStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		suppliers, err := st.ListSuppliers(r.Context(), tenantID)
		if err != nil {
			storeError(w, err, "")
			return
		}
		response.JSON(w, suppliers)
	}
}

func NewCreateSupplierHandler(st SupplierStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		var req supplierRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		supplier := newSupplier(tenantID, req)
		if err := st.CreateSupplier(r.Context(), supplier); err != nil {
			storeError(w, err, "")
			return
		}
		response.Created(w, supplier)
	}
}

func NewGetSupplierHandler(st SupplierStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		id, err := urlUUID(r, "supplierID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid supplier ID", nil)
			return
		}
		supplier, err := st.GetSupplier(r.Context(), id, tenantID)
		if err != nil {
			storeError(w, err, "Supplier not found")
			return
		}
		response.JSON(w, supplier)
	}
}

func NewUpdateSupplierHandler(st SupplierStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		id, err := urlUUID(r, "supplierID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid supplier ID", nil)
			return
		}
		supplier, err := st.GetSupplier(r.Context(), id, tenantID)
		if err != nil {
			storeError(w, err, "Supplier not found")
			return
		}

		var req supplierRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name != "" {
			supplier.Name = req.Name
		}
		if req.Location != nil {
			supplier.Location = req.Location
		}
		if req.City != nil {
			supplier.City = req.City
		}
		if req.Country != nil {
			supplier.Country = req.Country
		}
		if req.Region != nil {
			supplier.Region = req.Region
		}
		if req.Commodities != nil {
			supplier.Commodities = req.Commodities
		}
		supplier.UpdatedAt = time.Now().UTC()

		if err := st.UpdateSupplier(r.Context(), supplier); err != nil {
			storeError(w, err, "Supplier not found")
			return
		}
		response.JSON(w, supplier)
	}
}

func NewDeleteSupplierHandler(st SupplierStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		id, err := urlUUID(r, "supplierID")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid supplier ID", nil)
			return
		}
		if err := st.DeleteSupplier(r.Context(), id, tenantID); err != nil {
			storeError(w, err, "Supplier not found")
			return
		}
		response.NoContent(w)
	}
}

// NewImportSuppliersHandler ingests a CSV body for POST /api/v1/suppliers/import.
// Expected header: name,location,city,country,region,commodities. Rows with
// an empty name are rejected individually; the rest still import.
func NewImportSuppliersHandler(st SupplierStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		reader := csv.NewReader(r.Body)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true

		header, err := reader.Read()
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Missing CSV header row", nil)
			return
		}
		cols := make(map[string]int, len(header))
		for i, name := range header {
			cols[strings.ToLower(strings.TrimSpace(name))] = i
		}
		if _, ok := cols["name"]; !ok {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "CSV header must include a name column", nil)
			return
		}

		var (
			created   []*models.Supplier
			rowErrors []string
			line      = 1
		)
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			line++
			if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
				continue
			}
			if line-1 > maxImportRows {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					fmt.Sprintf("Import exceeds %d rows", maxImportRows), nil)
				return
			}

			req := supplierRequest{
				Name:        csvField(record, cols, "name"),
				Location:    csvFieldPtr(record, cols, "location"),
				City:        csvFieldPtr(record, cols, "city"),
				Country:     csvFieldPtr(record, cols, "country"),
				Region:      csvFieldPtr(record, cols, "region"),
				Commodities: csvFieldPtr(record, cols, "commodities"),
			}
			if req.Name == "" {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: name is required", line))
				continue
			}

			supplier := newSupplier(tenantID, req)
			if err := st.CreateSupplier(r.Context(), supplier); err != nil {
				if errors.Is(err, store.ErrDuplicateKey) {
					rowErrors = append(rowErrors, fmt.Sprintf("line %d: supplier %q already exists", line, req.Name))
					continue
				}
				storeError(w, err, "")
				return
			}
			created = append(created, supplier)
		}

		response.Created(w, map[string]any{
			"imported": len(created),
			"failed":   len(rowErrors),
			"errors":   rowErrors,
		})
	}
}

func newSupplier(tenantID uuid.UUID, req supplierRequest) *models.Supplier {
	now := time.Now().UTC()
	return &models.Supplier{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        req.Name,
		Location:    req.Location,
		City:        req.City,
		Country:     req.Country,
		Region:      req.Region,
		Commodities: req.Commodities,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func csvField(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func csvFieldPtr(record []string, cols map[string]int, name string) *string {
	v := csvField(record, cols, name)
	if v == "" {
		return nil
	}
	return &v
}
