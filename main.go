//
// SPEAKSFER
// =========
// A HTTP REST service for articles with tags, ratings, favourites,
// highlights, bookmarks and comments.
//
// Also check the generated docs from passing the -routes flag,
// to run yourself do: `go run . -routes`
//
// Boot the server:
// ----------------
// $ go run main.go
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/
// root.
//
// $ curl -X POST -d '{"username":"reader_rick","email":"rick@example.com"}' http://localhost:3333/users
// {"id":1,"username":"reader_rick","email":"rick@example.com","created_at":"...","role":"reader"}
//
// $ curl -X POST -H 'X-User-ID: 1' -d '{"title":"...","description":"...","body":"...","taglist":"go, rest"}' http://localhost:3333/articles
// {"id":"...","slug":"...","tags":["go","rest"],...}
//
// $ curl -X PUT -H 'X-User-ID: 1' http://localhost:3333/articles/<slug>/favourite
// {"article":"...","state":"favourited","favourite_count":1,"unfavourite_count":0}
//
// $ curl http://localhost:9999/metrics
//
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/speaksfer/internal/article"
	"github.com/SergeyParamoshkin/speaksfer/internal/bookmark"
	"github.com/SergeyParamoshkin/speaksfer/internal/comment"
	"github.com/SergeyParamoshkin/speaksfer/internal/config"
	"github.com/SergeyParamoshkin/speaksfer/internal/events"
	"github.com/SergeyParamoshkin/speaksfer/internal/highlight"
	"github.com/SergeyParamoshkin/speaksfer/internal/logging"
	"github.com/SergeyParamoshkin/speaksfer/internal/metrics"
	"github.com/SergeyParamoshkin/speaksfer/internal/rating"
	"github.com/SergeyParamoshkin/speaksfer/internal/store"
	"github.com/SergeyParamoshkin/speaksfer/internal/tag"
	"github.com/SergeyParamoshkin/speaksfer/internal/user"
)

const ServiceName = "speaksfer"

const shutdownTimeout = 10 * time.Second

type App struct {
	sugarLogger *zap.SugaredLogger
	config      config.Config
	store       *store.DB
	metrics     *metrics.Metrics
	events      events.Publisher
}

// nolint
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// nolint
	var (
		routes   = flag.Bool("routes", getEnvBool(ServiceName+"_routes", false), "Generate router documentation")
		addr     = flag.String("addr", getEnv(ServiceName+"_ADDR", cfg.Server.Addr), "application port")
		diagPort = flag.String("diag_addr", getEnv(ServiceName+"_DIAG_ADDR", cfg.Server.DiagAddr), "diag port")
	)

	flag.Parse()

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync() // flushes buffer, if any
	sugar := logger.Sugar()

	exporter, err := metrics.NewExporter()
	if err != nil {
		sugar.Panicf("failed to initialize prometheus exporter %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.New(ctx, cfg.Database.Driver, cfg.Database.DSN, store.WithMaxRetries(cfg.Engagement.MaxRetries))
	if err != nil {
		sugar.Fatalw("failed to open store", "driver", cfg.Database.Driver, "error", err)
	}
	defer db.Close()

	var pub events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		np, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, sugar)
		if err != nil {
			sugar.Errorw("nats unavailable, engagement events disabled", "url", cfg.NATS.URL, "error", err)
		} else {
			defer np.Close()
			pub = np
		}
	}

	a := &App{
		sugarLogger: sugar,
		config:      cfg,
		store:       db,
		metrics:     metrics.New(global.Meter(ServiceName)),
		events:      pub,
	}

	r := a.Router()

	// Passing -routes to the program will generate docs for the above
	// router definition.
	if *routes {
		// nolint
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/speaksfer",
			Intro:       "Welcome to the speaksfer generated docs.",
		}))

		return
	}

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", exporter.ServeHTTP)
	diagRouter.Get("/healthz", a.Health)

	servers := []*http.Server{
		{Addr: *addr, Handler: r},
		{Addr: *diagPort, Handler: diagRouter},
	}
	for _, srv := range servers {
		srv := srv
		go func() {
			sugar.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				sugar.Errorw(err.Error())
				stop()
			}
		}()
	}

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("shutdown", "addr", srv.Addr, "error", err)
		}
	}
}

// Router builds the API router.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(a.Logger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(a.metrics.Handler)
	r.Use(user.Authenticate(a.store))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("root."))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := logging.FromContext(r.Context())
		logger.Infow("ping with middle")
		_, err := w.Write([]byte("pong"))
		if err != nil {
			logger.Errorw(err.Error())
		}
	})

	articles := article.NewHandler(a.store, a.metrics, a.events, a.config.Pagination)
	bookmarks := bookmark.NewHandler(a.store, a.metrics, a.events)
	comments := comment.NewHandler(a.store, a.metrics, a.events)
	highlights := highlight.NewHandler(a.store, a.metrics, a.events)
	ratings := rating.NewHandler(a.store, a.metrics, a.events)
	users := user.NewHandler(a.store, a.config.Admin.Usernames)

	// RESTy routes for "articles" resource; everything that hangs off one
	// article shares its ArticleCtx.
	r.Mount("/articles", articles.Routes(
		bookmarks.ArticleRoutes,
		comments.ArticleRoutes,
		highlights.ArticleRoutes,
		ratings.ArticleRoutes,
	))
	r.Mount("/bookmarks", bookmarks.Routes())
	r.Mount("/comments", comments.Routes())
	r.Mount("/highlights", highlights.Routes())
	r.Mount("/tags", tag.NewHandler(a.store).Routes())
	r.Mount("/users", users.Routes())

	// Mount the admin sub-router, which btw is the same as:
	// r.Route("/admin", func(r chi.Router) { admin routes here })
	r.Mount("/admin", users.AdminRouter())

	return r
}

// Logger injects the request scoped logger.
func (a *App) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := a.sugarLogger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
	})
}

// Health reports whether the store answers.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		a.sugarLogger.Errorw("health check failed", "error", err)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)

		return
	}
	_, _ = w.Write([]byte("ok"))
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}

	return b
}

// Errors that reach render.Respond directly, rather than through an
// ErrResponse renderer, are logged and never shown to the client.
// nolint
func init() {
	render.Respond = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		if err, ok := v.(error); ok {

			// We set a default error status response code if one hasn't been set.
			if _, ok := r.Context().Value(render.StatusCtxKey).(int); !ok {
				w.WriteHeader(http.StatusBadRequest)
			}

			logging.FromContext(r.Context()).Errorw("unrendered error", "error", err)

			render.DefaultResponder(w, r, render.M{"status": "error"})

			return
		}

		render.DefaultResponder(w, r, v)
	}
}
