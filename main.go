package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"notedesk/auth"
	"notedesk/config"
	"notedesk/handlers"
	appmw "notedesk/middleware"
	"notedesk/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	st, err := store.New(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("storage init", zap.Error(err))
	}
	defer st.Close()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	h := handlers.New(st, tokens, logger)
	r := newRouter(cfg, h, tokens, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, h *handlers.Handler, tokens *auth.TokenService, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(appmw.AccessLog(logger))
	r.Use(chimw.Recoverer)
	r.Use(appmw.CORS(cfg.CORSOrigins))

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireAuth(tokens))
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Put("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)
	})

	// Everything else is the front end bundle.
	r.NotFound(spaHandler(cfg.StaticDir))
	return r
}

// spaHandler serves files from dir and falls back to index.html for
// client-side routes.
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
