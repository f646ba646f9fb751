package app

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/rpattn/engtrack/internal/config"
	"github.com/rpattn/engtrack/internal/export"
	"github.com/rpattn/engtrack/internal/ingestion"
	"github.com/rpattn/engtrack/internal/middleware"
	"github.com/rpattn/engtrack/pkg/logger"
	"github.com/rpattn/engtrack/pkg/metrics"
)

// Services are the two sheet services sharing one storage.
type Services struct {
	Ingestion *ingestion.Service
	Export    *export.Service
}

// NewServices builds both services from config. Unknown policy or style
// values are rejected.
func NewServices(cfg config.Config, storage Storage, log logger.Logger, m *metrics.Manager) (Services, error) {
	policy, err := ingestion.ParseDuplicatePolicy(cfg.Import.DuplicatePolicy)
	if err != nil {
		return Services{}, err
	}
	style, err := export.ParseSampleStyle(cfg.Export.SampleStyle)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Ingestion: ingestion.NewService(storage.Collections, storage.Logs,
			ingestion.WithDuplicatePolicy(policy),
			ingestion.WithLogger(log.Named("ingestion")),
			ingestion.WithMetrics(m),
		),
		Export: export.NewService(storage.Collections,
			export.WithSampleStyle(style),
			export.WithLogger(log.Named("export")),
			export.WithMetrics(m),
		),
	}, nil
}

// NewRouter mounts every endpoint behind CORS and request logging.
func NewRouter(cfg config.Config, services Services, log logger.Logger, m *metrics.Manager) http.Handler {
	imports := ingestion.NewHTTPHandler(services.Ingestion, cfg.Server.MaxUploadBytes)
	exports := export.NewHTTPHandler(services.Export)

	mux := http.NewServeMux()
	mux.Handle("/imports/", imports)
	mux.Handle("/records/", imports)
	mux.Handle("/templates/", exports)
	mux.Handle("/exports/", exports)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
	})

	return corsHandler.Handler(middleware.LoggingMiddleware(log.Named("http"), m)(mux))
}
