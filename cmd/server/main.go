package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/talent-sift/internal/audit"
	"github.com/ignatzorin/talent-sift/internal/board"
	"github.com/ignatzorin/talent-sift/internal/config"
	"github.com/ignatzorin/talent-sift/internal/db"
	"github.com/ignatzorin/talent-sift/internal/events"
	"github.com/ignatzorin/talent-sift/internal/goroutine"
	httpHandlers "github.com/ignatzorin/talent-sift/internal/http/handlers"
	httpRouter "github.com/ignatzorin/talent-sift/internal/http/router"
	"github.com/ignatzorin/talent-sift/internal/integration/qntrl"
	"github.com/ignatzorin/talent-sift/internal/integration/sendgrid"
	"github.com/ignatzorin/talent-sift/internal/integration/servicenow"
	"github.com/ignatzorin/talent-sift/internal/integration/sheets"
	"github.com/ignatzorin/talent-sift/internal/integration/workflow"
	"github.com/ignatzorin/talent-sift/internal/logger"
	"github.com/ignatzorin/talent-sift/internal/repository"
	"github.com/ignatzorin/talent-sift/internal/service"
	"github.com/ignatzorin/talent-sift/internal/session"
	"github.com/ignatzorin/talent-sift/internal/shortlist"
	"github.com/ignatzorin/talent-sift/internal/storage"
	"github.com/ignatzorin/talent-sift/internal/ws"
)

const (
	// auditTimeout ограничивает запись одного события в один журнал.
	auditTimeout = 10 * time.Second
	// boardSweepInterval - период поиска неактивных досок.
	boardSweepInterval = 5 * time.Minute
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Setup(cfg.Env, cfg.LogLevel)
	mainLog := logger.Component("main")

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLog.WithError(err).Fatal("ошибка подключения к базе")
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		mainLog.WithError(err).Fatal("ошибка миграций")
	}

	// Хранилище контекста сессий: Redis, если задан, иначе память процесса.
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisClient, err := session.Connect(ctx, cfg.RedisURL)
		if err != nil {
			mainLog.WithError(err).Fatal("ошибка подключения к Redis")
		}
		defer func() { _ = redisClient.Close() }()
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
	} else {
		mainLog.Warn("REDIS_URL не задан, контекст сессий хранится в памяти")
		sessions = session.NewMemoryStore(ctx, cfg.SessionTTL)
	}

	resumeStorage, err := storage.NewResumeStorage(cfg.ResumeStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		mainLog.WithError(err).Fatal("не удалось подготовить хранилище резюме")
	}

	// Репозитории.
	applicantRepo := repository.NewApplicantRepository(dbConn)
	eventRepo := repository.NewShortlistEventRepository(dbConn)

	// Журналы событий.
	notifier := audit.NewNotifier(auditTimeout, eventRepo)
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, events.Topics(cfg.Kafka.ShortlistTopic, cfg.Kafka.RunTopic))
		if err != nil {
			mainLog.WithError(err).Fatal("не удалось создать Kafka publisher")
		}
		defer func() { _ = publisher.Close() }()
		notifier.Add(publisher)
	}
	if cfg.SheetsEnabled() {
		sheetLog, err := sheets.NewLogger(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsPath, cfg.Sheets.RunsRange, cfg.Sheets.ShortlistRange)
		if err != nil {
			mainLog.WithError(err).Fatal("не удалось подключиться к Google Sheets")
		}
		notifier.Add(sheetLog)
	}

	// Внешние системы, принимающие кандидатов. Ненастроенные цели не регистрируются.
	mailer := sendgrid.NewMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.ToEmail)
	targets := map[string]shortlist.Target{}
	if cfg.ServiceNow.URL != "" {
		targets[shortlist.SourceServiceNow] = servicenow.NewClient(cfg.ServiceNow.URL, cfg.ServiceNow.User, cfg.ServiceNow.Password, 0)
	}
	if cfg.Qntrl.URL != "" {
		targets[shortlist.SourceQntrl] = qntrl.NewClient(cfg.Qntrl.URL, cfg.Qntrl.Token, 0)
	}
	if mailer.Configured() {
		targets[shortlist.SourceEmail] = mailer
	}
	dispatcher := shortlist.NewDispatcher(targets, notifier)
	mainLog.WithField("targets", dispatcher.Sources()).Info("цели отправки кандидатов")

	// Доски кандидатов и вебсокеты.
	boards := board.NewRegistry()
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		boards.RunEviction(ctx, cfg.SessionTTL, boardSweepInterval)
	})
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)
	boards.OnCreate(hub.Attach)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)
	runService := service.NewRunService(service.RunServiceConfig{
		Resumes:        resumeStorage,
		Workflow:       workflow.NewClient(cfg.Workflow.BaseURL, cfg.Workflow.WorkflowID, cfg.Workflow.Timeout),
		Applicants:     applicantRepo,
		Sessions:       sessions,
		Boards:         boards,
		Notifier:       notifier,
		AllowedDomains: cfg.AllowedEmailDomains,
		DefaultOrgID:   cfg.Workflow.DefaultOrgID,
		MaxResumes:     cfg.MaxResumesPerRun,
	})
	shortlistService := service.NewShortlistService(boards, sessions, dispatcher)

	// HTTP хэндлеры.
	healthHandler := httpHandlers.NewHealthHandler(dbConn, sessions)
	sessionHandler := httpHandlers.NewSessionHandler(tokenManager, sessions, boards)
	runHandler := httpHandlers.NewRunHandler(runService)
	boardHandler := httpHandlers.NewBoardHandler(boards, shortlistService)
	proxyHandler := httpHandlers.NewProxyHandler(shortlistService, mailer)
	wsHandler := httpHandlers.NewWSHandler(hub)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, tokenManager, healthHandler, sessionHandler, runHandler, boardHandler, proxyHandler, wsHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLog.WithError(err).Error("ошибка остановки http сервера")
		}
	}()

	mainLog.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		mainLog.WithError(err).Fatal("сервер завершился с ошибкой")
	}

	// дожидаемся записи событий, отправленных до остановки
	notifier.Wait()
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
