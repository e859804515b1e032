package web

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	webembed "github.com/bankjademk11/qwen-odg/web"
)

// NewRouter creates the page router: printable documents and their assets.
func NewRouter(db *sql.DB) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
	}

	r := chi.NewRouter()
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	r.Get("/transfers/{id}/print", s.TransferPrint)

	return r, nil
}
