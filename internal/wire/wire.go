// internal/wire/wire.go
package wire

import (
	"net/http"

	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/queue"
	"event-ticketing/internal/realtime"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/mailer"
	"event-ticketing/pkg/middleware"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Version is reported by GET /.
var Version = "dev"

// Infra are the connections main opened. Redis and Rabbit may be nil.
type Infra struct {
	Redis  *redis.Client
	Rabbit *amqp.Connection
	Hub    *realtime.Hub
	Mailer mailer.Mailer
}

// App menyimpan semua dependencies
type App struct {
	Router   *chi.Mux
	Service  *usecase.Service
	Jobs     queue.Publisher
	Consumer *queue.Consumer // nil when jobs run in-process
}

// guards are the auth middlewares shared by route groups.
type guards struct {
	auth  func(http.Handler) http.Handler
	admin func(http.Handler) http.Handler
}

// Wiring menginisialisasi semua dependencies
func Wiring(repo *repository.Repository, config *utils.Config, infra Infra, logger *zap.Logger) (*App, error) {
	// Side effects: notification service first, the job handler needs it
	notification := usecase.NewNotificationService(repo.Notification, infra.Hub, logger)
	jobHandler := usecase.NewJobHandler(repo, notification, infra.Mailer, logger)

	app := &App{}
	if infra.Rabbit != nil {
		publisher, err := queue.NewRabbitPublisher(infra.Rabbit, config.Rabbit, logger)
		if err != nil {
			return nil, err
		}
		consumer, err := queue.NewConsumer(infra.Rabbit, config.Rabbit, jobHandler, logger)
		if err != nil {
			_ = publisher.Close()
			return nil, err
		}
		app.Jobs, app.Consumer = publisher, consumer
	} else {
		app.Jobs = queue.NewInlinePublisher(jobHandler, logger)
	}

	// Initialize services dan handlers
	app.Service = usecase.NewService(repo, config, usecase.Deps{
		Jobs:         app.Jobs,
		Notification: notification,
		Mailer:       infra.Mailer,
	}, logger)

	verifier := middleware.NewSessionVerifier(repo.Session, config.JWT, logger)
	handler := adaptor.NewHandler(app.Service, infra.Hub, verifier, config, logger)

	// Setup router
	var limiter *middleware.RateLimiter
	if infra.Redis != nil {
		limiter = middleware.NewRateLimiter(infra.Redis, config.RateLimit, logger)
	}
	g := guards{
		auth:  middleware.AuthSession(verifier),
		admin: middleware.Admin(repo.User, logger),
	}
	app.Router = setupRouter(handler, g, limiter, config, logger)

	return app, nil
}

// clientAddress rewrites RemoteAddr from proxy headers only when the proxy is
// trusted. The rate limiter keys on RemoteAddr.
func clientAddress(trustProxy bool) func(http.Handler) http.Handler {
	if trustProxy {
		return chimw.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	g guards,
	limiter *middleware.RateLimiter,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(clientAddress(config.App.TrustProxy))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Tracing)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(config.App.ClientOrigins))

	// Health, info and metrics stay outside the rate limit
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "success", map[string]string{
			"name":    config.App.Name,
			"version": Version,
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter))

		// Apply routes
		wireAuth(r, handler.Auth, g)
		wireUser(r, handler.User, g)
		wireEvent(r, handler.Event, g)
		wireTicket(r, handler.Ticket, g)
		wireNotification(r, handler.Notification, g)
		wireAnalytics(r, handler.Analytics, g)

		// websocket authenticates itself, see RealtimeHandler.Connect
		r.Get("/ws", handler.Realtime.Connect)
	})

	return r
}
