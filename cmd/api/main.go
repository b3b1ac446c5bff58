package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/rs/cors"

	"taskradar/internal/ai"
	"taskradar/internal/analytics"
	"taskradar/internal/api"
	"taskradar/internal/config"
	"taskradar/internal/db"
	"taskradar/internal/logger"
	"taskradar/internal/tasks"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config (optional, env otherwise)")
	flag.Parse()

	log := logger.Init("taskradar-api")
	cfg := config.MustLoad(*configPath)

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.WithError(err).Fatal("❌ failed to connect DB")
	}
	defer database.Close()
	log.Info("✅ connected to PostgreSQL")

	store := tasks.NewStore(database)
	recorder := analytics.New(database)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("tasks migration failed")
	}
	if err := recorder.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("analytics migration failed")
	}

	handler := &api.Handler{
		Store:     store,
		AI:        ai.New(cfg.OpenAIKey, cfg.OpenAIModel),
		Analytics: recorder,
		Log:       log,
		IngestURL: cfg.IngestURL,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- TASKS API -----
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListTasks(w, r)
		case http.MethodPost:
			handler.CreateTask(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/tasks/analyze", postOnly(handler.AnalyzeTasks))
	mux.HandleFunc("/insights", getOnly(handler.Insights))

	// ----- MEETING NOTES -----
	mux.HandleFunc("/meetings/analyze", postOnly(handler.AnalyzeMeeting))

	// ----- CSV INGEST -----
	mux.HandleFunc("/ingest", postOnly(handler.Ingest))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	log.WithField("address", cfg.Address).Info("🚀 API server is running")
	log.Fatal(http.ListenAndServe(cfg.Address, c.Handler(mux)))
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
