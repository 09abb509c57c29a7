package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/uniarchive/photoarchive/internal/accounts"
	"github.com/uniarchive/photoarchive/internal/auth"
	"github.com/uniarchive/photoarchive/internal/catalog"
	"github.com/uniarchive/photoarchive/internal/processing"
	"github.com/uniarchive/photoarchive/internal/storage"
	"github.com/uniarchive/photoarchive/models"
)

// Deps wires the router; everything is constructed in main (or a test) and
// passed in, never reached through globals.
type Deps struct {
	Verifier       *auth.Verifier
	Accounts       *accounts.Service
	Repo           *catalog.Repo
	Catalog        *catalog.Service
	Store          storage.Store
	Processor      processing.ImageProcessor
	MaxUploadBytes int64

	// UploadDir enables static serving of local uploads when non-empty.
	UploadDir string
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	ah := NewAuthHandler(d.Accounts)
	ch := NewCategoryHandler(d.Repo)
	ih := NewImageHandler(d.Repo, d.Catalog, d.Store, d.Processor, d.MaxUploadBytes)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(httprate.Limit(
					10,
					1*time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
				))
				r.Post("/register", ah.Register)
				r.Post("/login", ah.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(d.Verifier.RequireAuth)
				r.Get("/profile", ah.Profile)
				r.Put("/change-password", ah.ChangePassword)
				r.Group(func(r chi.Router) {
					r.Use(auth.RequireRole(models.RoleAdmin))
					r.Get("/users", ah.Users)
					r.Put("/users/role", ah.UpdateRole)
				})
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", ch.List)
			r.Get("/{id}", ch.Get)
			r.Group(func(r chi.Router) {
				r.Use(d.Verifier.RequireAuth)
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Post("/", ch.Create)
				r.Put("/{id}", ch.Update)
				r.Delete("/{id}", ch.Delete)
			})
		})

		r.Route("/images", func(r chi.Router) {
			r.With(d.Verifier.OptionalAuth).Get("/", ih.List)
			r.With(d.Verifier.OptionalAuth).Get("/search", ih.Search)
			r.Get("/filter-options", ih.FilterOptions)
			r.With(d.Verifier.OptionalAuth).Get("/{id}", ih.Get)
			r.Get("/{id}/related", ih.Related)
			r.Group(func(r chi.Router) {
				r.Use(d.Verifier.RequireAuth)
				r.With(auth.RequireRole(models.RoleUser, models.RoleAdmin)).Post("/", ih.Upload)
				r.Put("/{id}", ih.Update)
				r.Delete("/{id}", ih.Delete)
			})
		})
	})

	return r
}
