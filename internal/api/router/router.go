package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/voiceflow-enquiry/internal/http/middleware"
	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

// EnquiryPath is where the web form posts enquiries.
const EnquiryPath = "/api/send"

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	EnquiryHandler     http.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", healthCheck)
	// Registered for every method: the handler itself answers 405 with a JSON body.
	if cfg.EnquiryHandler != nil {
		r.Handle(EnquiryPath, cfg.EnquiryHandler)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
