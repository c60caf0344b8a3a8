package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/mlooney/gridpool/external/scorefeed"
	"github.com/mlooney/gridpool/external/webhook"
	"github.com/mlooney/gridpool/internal/config"
	"github.com/mlooney/gridpool/internal/domain/game"
	"github.com/mlooney/gridpool/internal/domain/grid"
	"github.com/mlooney/gridpool/internal/domain/message"
	"github.com/mlooney/gridpool/internal/domain/participant"
	"github.com/mlooney/gridpool/internal/infrastructure/repository/memory"
	"github.com/mlooney/gridpool/internal/infrastructure/repository/postgres"
	"github.com/mlooney/gridpool/internal/interfaces/httpapi"
	idgen "github.com/mlooney/gridpool/internal/platform/id"
	"github.com/mlooney/gridpool/internal/platform/logging"
	"github.com/mlooney/gridpool/internal/platform/resilience"
	"github.com/mlooney/gridpool/internal/usecase"
)

type repositories struct {
	games        game.Repository
	claims       grid.Repository
	participants participant.Repository
	requests     participant.RequestRepository
	messages     message.Repository
}

// NewHTTPServer wires every service behind the HTTP router. The
// returned cleanup stops the notification workers and closes the
// database handle once the server is down.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	repos, closeDB, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	notifier := webhook.NewNotifier(webhook.Config{
		DefaultURL: cfg.WebhookDefaultURL,
		Timeout:    cfg.WebhookTimeout,
		UserAgent:  cfg.ServiceName + "/" + cfg.ServiceVersion,
	}, logger)

	dispatcher, err := usecase.NewNotificationDispatcher(cfg.NotifyWorkers, notifier, logger)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("build notification dispatcher: %w", err)
	}

	feed := scorefeed.NewClient(scorefeed.ClientConfig{
		BaseURL:    cfg.FeedBaseURL,
		Timeout:    cfg.FeedTimeout,
		MaxRetries: cfg.FeedMaxRetries,
		Logger:     logging.NewJSON(cfg.LogLevel),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMax,
		},
	})

	lockSvc := usecase.NewLockService(repos.games, repos.claims, dispatcher, logger)
	numbersSvc := usecase.NewNumbersService(repos.games, dispatcher, logger)
	gridSvc := usecase.NewGridService(repos.games, repos.claims, repos.participants, lockSvc, numbersSvc, dispatcher, logger)
	gameSvc := usecase.NewGameService(repos.games, repos.claims, repos.participants, repos.requests, repos.messages, idgen.NewRandomGenerator(), dispatcher, webhook.ValidURL, logger)
	participantSvc := usecase.NewParticipantService(repos.games, repos.claims, repos.participants, repos.requests, lockSvc, dispatcher, logger)
	messageSvc := usecase.NewMessageService(repos.games, repos.participants, repos.messages, dispatcher, logger)
	scoreboardSvc := usecase.NewScoreboardService(feed, cfg.ScoreboardTTL, cfg.Leagues, logger)
	quarterSvc := usecase.NewQuarterService(repos.games, repos.claims, scoreboardSvc, dispatcher, logger)

	handler := httpapi.NewHandler(
		gameSvc,
		gridSvc,
		lockSvc,
		numbersSvc,
		participantSvc,
		messageSvc,
		scoreboardSvc,
		quarterSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.AdminToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		dispatcher.Close()
		closeDB()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func() {
		dispatcher.Close()
		closeDB()
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *slog.Logger) (repositories, func(), error) {
	if cfg.DBURL == "" {
		logger.Info("storage backend", "driver", "memory")
		return repositories{
			games:        memory.NewGameRepository(),
			claims:       memory.NewClaimRepository(),
			participants: memory.NewParticipantRepository(),
			requests:     memory.NewRequestRepository(),
			messages:     memory.NewMessageRepository(),
		}, func() {}, nil
	}

	db, err := sqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary))
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("storage backend", "driver", "postgres", "database", dbNameFromURL(cfg.DBURL))

	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	}

	return repositories{
		games:        postgres.NewGameRepository(db),
		claims:       postgres.NewClaimRepository(db),
		participants: postgres.NewParticipantRepository(db),
		requests:     postgres.NewRequestRepository(db),
		messages:     postgres.NewMessageRepository(db),
	}, closeDB, nil
}
