package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bankjademk11/qwen-odg/internal/model"
	"github.com/bankjademk11/qwen-odg/internal/store"
)

// CatalogHandler serves the lookup lists behind the POS and transfer forms.
type CatalogHandler struct {
	DB *sql.DB
}

// location returns the whcode/loccode query pair, defaulting the shelf from the warehouse.
func location(r *http.Request) (wh, loc string) {
	wh = r.URL.Query().Get("whcode")
	if wh == "" {
		wh = model.DefaultUserWhCode
	}
	loc = r.URL.Query().Get("loccode")
	if loc == "" {
		loc = model.LocationCodeFor(wh)
	}
	return wh, loc
}

func codeNames(w http.ResponseWriter, r *http.Request, rows []model.CodeName, err error, action string) {
	if err != nil {
		storeError(w, r, err, action)
		return
	}
	if rows == nil {
		rows = []model.CodeName{}
	}
	jsonResponse(w, http.StatusOK, rows)
}

// Warehouses handles GET /api/warehouses and GET /api/destination-warehouses.
func (h *CatalogHandler) Warehouses(w http.ResponseWriter, r *http.Request) {
	rows, err := store.ListWarehouses(r.Context(), h.DB)
	codeNames(w, r, rows, err, "failed to list warehouses")
}

// Locations handles GET /api/locations/{warehouse} and GET /api/destination-locations/{warehouse}.
func (h *CatalogHandler) Locations(w http.ResponseWriter, r *http.Request) {
	rows, err := store.ListLocations(r.Context(), h.DB, chi.URLParam(r, "warehouse"))
	codeNames(w, r, rows, err, "failed to list locations")
}

// Customers handles GET /api/customers.
func (h *CatalogHandler) Customers(w http.ResponseWriter, r *http.Request) {
	rows, err := store.ListCustomers(r.Context(), h.DB)
	codeNames(w, r, rows, err, "failed to list customers")
}

// Units handles GET /api/units.
func (h *CatalogHandler) Units(w http.ResponseWriter, r *http.Request) {
	units, err := store.ListUnits(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to list units")
		return
	}
	if units == nil {
		units = []string{}
	}
	jsonResponse(w, http.StatusOK, units)
}

// Categories handles GET /api/categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	wh, loc := location(r)
	categories, err := store.ListCategories(r.Context(), h.DB, wh, loc)
	if err != nil {
		storeError(w, r, err, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Products handles GET /api/pos-products.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := queryLimitOffset(r)
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	wh, loc := location(r)
	products, err := store.ListProducts(r.Context(), h.DB, model.ProductFilter{
		WhCode:   wh,
		Location: loc,
		Category: r.URL.Query().Get("category"),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		storeError(w, r, err, "failed to list products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	jsonResponse(w, http.StatusOK, products)
}

// CheckPrice handles GET /api/check-price-product. The result is a list of
// at most one product.
func (h *CatalogHandler) CheckPrice(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search == "" {
		jsonError(w, r, http.StatusBadRequest, "Search term cannot be empty")
		return
	}

	wh, loc := location(r)
	product, err := store.CheckPrice(r.Context(), h.DB, wh, loc, search)
	if err != nil {
		storeError(w, r, err, "failed to check price")
		return
	}
	if product == nil {
		jsonResponse(w, http.StatusOK, []model.Product{})
		return
	}
	jsonResponse(w, http.StatusOK, []model.Product{*product})
}
