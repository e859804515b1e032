package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// jsonBodyLimit caps JSON request bodies.
const jsonBodyLimit = 1 << 20

// Options carries the router's dependencies.
type Options struct {
	ERP            *sql.DB
	Local          *sql.DB
	JWTSecret      string
	RequireAuth    bool
	TokenTTL       time.Duration
	AllowedOrigins []string
	MediaBaseURL   string
	MaxUploadBytes int64

	// Pages, when set, is mounted at the root for server-rendered pages.
	Pages http.Handler
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	transfers := &TransfersHandler{DB: opts.ERP}
	sales := &SalesHandler{DB: opts.ERP}
	catalog := &CatalogHandler{DB: opts.ERP}
	analysis := &AnalysisHandler{DB: opts.ERP}
	health := &HealthHandler{DB: opts.ERP}
	authHandler := &AuthHandler{DB: opts.ERP, Local: opts.Local, JWTSecret: opts.JWTSecret, TokenTTL: opts.TokenTTL}
	images := &ImagesHandler{DB: opts.ERP, Local: opts.Local, MediaBaseURL: opts.MediaBaseURL, MaxUploadBytes: opts.MaxUploadBytes}
	if images.MaxUploadBytes <= 0 {
		images.MaxUploadBytes = 10 << 20
	}

	// Writes demand a token only when configured to.
	writeAuth := func(next http.Handler) http.Handler { return next }
	if opts.RequireAuth {
		writeAuth = RequireAuth
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(LoggingMiddleware)
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(OptionalAuth(opts.JWTSecret, opts.Local))

	r.Get("/api/health", health.Check)
	r.Get("/media/{key}", images.Media)

	// Multipart uploads enforce their own limit.
	r.With(writeAuth).Post("/api/products/images/upload", images.Upload)

	r.Group(func(r chi.Router) {
		r.Use(BodyLimit(jsonBodyLimit))

		r.Post("/api/login", authHandler.Login)
		r.With(RequireAuth).Post("/api/logout", authHandler.Logout)

		// Transfers.
		r.Get("/api/generate-transfer-no", transfers.NextNumber)
		r.Get("/api/transfers", transfers.List)
		r.Get("/api/transfers/{id}", transfers.Get)
		r.Get("/api/transfers/{id}/export.xlsx", transfers.Export)

		// Sales.
		r.Get("/api/generate-sale-no", sales.NextNumber)
		r.Get("/api/transactions", sales.Transactions)
		r.Get("/api/analysis-data", analysis.Snapshot)

		// Lookups.
		r.Get("/api/warehouses", catalog.Warehouses)
		r.Get("/api/locations/{warehouse}", catalog.Locations)
		r.Get("/api/destination-warehouses", catalog.Warehouses)
		r.Get("/api/destination-locations/{warehouse}", catalog.Locations)
		r.Get("/api/customers", catalog.Customers)
		r.Get("/api/units", catalog.Units)
		r.Get("/api/categories", catalog.Categories)
		r.Get("/api/pos-products", catalog.Products)
		r.Get("/api/check-price-product", catalog.CheckPrice)

		// Product images.
		r.Get("/api/products/image-history", images.AllHistory)
		r.Get("/api/products/{code}/image-history", images.ProductHistory)

		r.Group(func(r chi.Router) {
			r.Use(writeAuth)
			r.Post("/api/transfers", transfers.Create)
			r.Put("/api/transfers/{id}", transfers.Update)
			r.Post("/api/sales", sales.Create)
			r.Post("/api/products/images", images.Update)
			r.Post("/api/products/images/revert", images.Revert)
		})
	})

	if opts.Pages != nil {
		r.Mount("/", opts.Pages)
	}

	return r
}
