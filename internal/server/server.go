package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/familypulse/internal/config"
	"github.com/dukerupert/familypulse/internal/email"
	"github.com/dukerupert/familypulse/internal/handler"
	"github.com/dukerupert/familypulse/internal/middleware"
	"github.com/dukerupert/familypulse/internal/push"
	"github.com/dukerupert/familypulse/internal/question"
	"github.com/dukerupert/familypulse/internal/rotation"
	"github.com/dukerupert/familypulse/internal/store"
	ws "github.com/dukerupert/familypulse/internal/websocket"
)

type Server struct {
	db          *sql.DB
	cfg         *config.Config
	hub         *ws.Hub
	pushH       *handler.PushHandler
	notifH      *handler.NotificationHandler
	connectH    *handler.ConnectHandler
	pickH       *handler.PickHandler
	familyStore *store.FamilyStore
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	familyStore := store.NewFamilyStore(db)
	pushStore := store.NewPushStore(db)
	prefStore := store.NewPreferenceStore(db)
	logStore := store.NewNotificationLogStore(db)
	questionStore := store.NewQuestionStore(db)
	presetStore := store.NewPresetStore(db)
	answerStore := store.NewAnswerStore(db)
	pickStore := store.NewPickStore(db)

	pushLogger := logger.With("component", "push")

	// Without VAPID keys the service still runs: subscriptions and
	// preferences are stored, delivery is refused.
	var pushSvc *push.Service
	var dispatcher handler.Notifier
	var rotationNotifier rotation.Notifier
	if cfg.PushConfigured() {
		pushSvc = push.NewService(push.Config{
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			Subscriber:      cfg.VAPIDSubscriber,
		})
		d := push.NewDispatcher(pushSvc, pushStore, prefStore, logStore, pushLogger)
		dispatcher = d
		rotationNotifier = d
	}
	registry := push.NewRegistry(pushStore, prefStore, pushLogger)

	var mailer *email.Client
	if cfg.PostmarkServerToken != "" {
		mailer = email.NewClient(cfg.PostmarkServerToken, cfg.EmailFrom)
	}

	rotator := rotation.NewRotator(familyStore, questionStore, presetStore, rotationNotifier,
		logger.With("component", "rotation"))
	lifecycle := question.NewService(questionStore, logger.With("component", "question"))

	return &Server{
		db:  db,
		cfg: cfg,
		hub: hub,
		pushH: handler.NewPushHandler(registry, pushSvc, dispatcher, prefStore,
			logger.With("component", "push_handler")),
		notifH: handler.NewNotificationHandler(dispatcher, logStore,
			logger.With("component", "notification_handler")),
		connectH: handler.NewConnectHandler(rotator, lifecycle, questionStore, answerStore,
			familyStore, prefStore, mailer, dispatcher, hub,
			logger.With("component", "connect_handler")),
		pickH: handler.NewPickHandler(pickStore, familyStore, dispatcher, hub,
			logger.With("component", "pick_handler")),
		familyStore: familyStore,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Machine endpoints guarded by static bearer secrets, not user identity.
	cronAuth := middleware.RequireSecret(s.cfg.CronSecret)
	internalAuth := middleware.RequireSecret(s.cfg.InternalAPISecret)
	outerMux.Handle("GET /cron/rotate-questions", cronAuth(s.rateLimited(s.connectH.RotateQuestions)))
	outerMux.Handle("POST /cron/weekly-digest", cronAuth(s.rateLimited(s.connectH.WeeklyDigest)))
	outerMux.Handle("POST /notifications/send", internalAuth(http.HandlerFunc(s.notifH.Send)))

	// User routes resolved through the identity proxy header.
	userMux := http.NewServeMux()
	s.registerUserRoutes(userMux)
	outerMux.Handle("/", middleware.RequireUser(s.familyStore)(userMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerUserRoutes(mux *http.ServeMux) {
	// Subscriptions and preferences work even when delivery is disabled;
	// only the endpoints that must send require configured VAPID keys.
	mux.HandleFunc("POST /push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /push/preferences", s.pushH.GetPreferences)
	mux.HandleFunc("PUT /push/preferences", s.pushH.UpdatePreferences)
	if s.cfg.PushConfigured() {
		mux.HandleFunc("GET /push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /notifications/test", s.pushH.TestNotification)
	}

	mux.HandleFunc("GET /notifications", s.notifH.History)
	mux.HandleFunc("POST /notifications/{id}/click", s.notifH.Click)

	mux.HandleFunc("POST /connect/initialize", s.connectH.Initialize)
	mux.HandleFunc("GET /connect/current", s.connectH.Current)
	mux.HandleFunc("POST /connect/questions/{id}/activate", s.connectH.Activate)
	mux.HandleFunc("POST /connect/questions/{id}/answers", s.connectH.SubmitAnswer)
	mux.HandleFunc("GET /connect/history", s.connectH.History)

	mux.HandleFunc("GET /picks", s.pickH.List)
	mux.HandleFunc("PUT /picks", s.pickH.Update)
	mux.HandleFunc("GET /picks/history", s.pickH.History)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	return middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)(h)
}
