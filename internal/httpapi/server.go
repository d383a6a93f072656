package httpapi

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/session"
)

// Config — параметры HTTP-сервера.
type Config struct {
	AllowOrigins     string
	MaxUploadBytes   int
	AnalyzeRateLimit int

	// RequestLog получает строки журнала запросов. nil отключает журнал.
	RequestLog io.Writer
}

// History — операции над сохранёнными играми, доступные по HTTP.
type History interface {
	List(ctx context.Context) []models.SavedGame
	Get(ctx context.Context, id string) (models.SavedGame, bool)
	Delete(ctx context.Context, id string)
	Clear(ctx context.Context)
}

// Server обслуживает API сессий и истории.
type Server struct {
	app      *fiber.App
	sessions *session.Manager
	history  History
	log      *slog.Logger
}

// New собирает приложение fiber со всеми маршрутами.
func New(cfg Config, sessions *session.Manager, history History, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	s := &Server{
		sessions: sessions,
		history:  history,
		log:      log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "historyGames",
		BodyLimit:             cfg.MaxUploadBytes,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
		// Сессии хранят строки из тела запроса дольше самого запроса.
		Immutable: true,
	})

	s.app.Use(recover.New())
	if cfg.RequestLog != nil {
		s.app.Use(logger.New(logger.Config{
			Output: cfg.RequestLog,
			Format: "${time} ${status} ${latency} ${method} ${path}\n",
		}))
	}
	s.app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := s.app.Group("/api/v1")

	api.Post("/sessions", s.createSession)

	sess := api.Group("/sessions/:id", s.loadSession)
	sess.Get("/", s.getSession)
	sess.Delete("/", s.deleteSession)
	sess.Post("/credentials", s.setCredentials)
	sess.Put("/config", s.setConfig)
	sess.Post("/puzzle-image", s.setPuzzleImage)
	sess.Post("/menu", s.navigate((*session.Session).OpenMenu))
	sess.Post("/editor", s.navigate((*session.Session).BackToEditor))
	sess.Post("/replay", s.navigate((*session.Session).Replay))
	sess.Post("/reset", s.navigate(func(ss *session.Session) error {
		ss.Reset()
		return nil
	}))
	sess.Post("/game", s.startGame)
	sess.Post("/game/actions", s.act)
	sess.Delete("/game", s.navigate((*session.Session).LeaveGame))
	sess.Post("/history/:gameId", s.loadSaved)

	analyze := analyzeLimiter(cfg.AnalyzeRateLimit)
	sess.Post("/analyze/text", analyze, s.analyzeText)
	sess.Post("/analyze/file", analyze, s.analyzeFile)

	api.Get("/history", s.listHistory)
	api.Delete("/history", s.clearHistory)
	api.Get("/history/:id", s.getHistory)
	api.Delete("/history/:id", s.deleteHistory)

	return s
}

// analyzeLimiter ограничивает число анализов с одного IP в минуту.
// perMinute <= 0 отключает ограничение.
func analyzeLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many analysis requests, please try again later",
			})
		},
	})
}

// App возвращает приложение fiber.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen блокирует до остановки сервера.
func (s *Server) Listen(addr string) error {
	s.log.Info("http server started", slog.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown дожидается завершения текущих запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
