package handler

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dan9191/car-service/internal/middleware"
)

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	FrontendURL string
	UploadDir   string // Served under /uploads/ when set
	Metrics     *middleware.Metrics
	Gatherer    prometheus.Gatherer
}

// NewRouter wires every route, the middleware chain and CORS
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(h.log))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if cfg.UploadDir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(noListingFS{http.Dir(cfg.UploadDir)}))
		r.PathPrefix("/uploads/").Handler(files).Methods(http.MethodGet, http.MethodHead)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/users/signup", h.Signup).Methods(http.MethodPost)
	api.HandleFunc("/users/login", h.Login).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(h.auth, h.WriteError))
	protected.HandleFunc("/users/profile", h.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/users/profile", h.UpdateProfile).Methods(http.MethodPatch)
	protected.HandleFunc("/cars", h.ListCars).Methods(http.MethodGet)
	protected.HandleFunc("/cars", h.CreateCar).Methods(http.MethodPost)
	protected.HandleFunc("/cars/{id}", h.GetCar).Methods(http.MethodGet)
	protected.HandleFunc("/cars/{id}", h.UpdateCar).Methods(http.MethodPatch)
	protected.HandleFunc("/cars/{id}", h.DeleteCar).Methods(http.MethodDelete)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.FrontendURL}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)
	return cors(r)
}

// noListingFS serves files but never directory indexes
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
