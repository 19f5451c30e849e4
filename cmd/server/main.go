package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/Danielrabaneda/Salas/internal/ai"
	"github.com/Danielrabaneda/Salas/internal/api"
	"github.com/Danielrabaneda/Salas/internal/config"
	"github.com/Danielrabaneda/Salas/internal/game"
	"github.com/Danielrabaneda/Salas/internal/notify"
	"github.com/Danielrabaneda/Salas/internal/session"
	"github.com/Danielrabaneda/Salas/internal/ws"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Salas - One Word Story server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                Port to listen on (default: 8080)
  LOG_LEVEL           zerolog level (default: info)
  DEFAULT_PROVIDER    AI provider: "openai", "ollama" or "none" (default: openai)
  DEFAULT_MODEL       AI model to use (default: gpt-4o-mini)
  OPENAI_API_KEY      OpenAI API key (required for OpenAI provider)
  OPENAI_BASE_URL     Custom OpenAI API base URL (optional)
  OLLAMA_HOST         Ollama host URL (default: http://localhost:11434)
  WORD_TIMEOUT        Deadline for the practice opponent's word (default: 8s)
  TITLE_TIMEOUT       Deadline for story titles (default: 10s)
  REDIS_ADDR          Redis address for sessions (default: in-memory)
  RABBITMQ_URL        AMQP URL for event publishing (default: disabled)
  EXPORT_ENABLED      Export finished stories to file (default: false)
  EXPORT_FILE         Path to export stories (default: ./stories.txt)
  GM_USER, GM_PASS    Basic auth for /metrics

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Salas %s\n", version)
		return
	}

	_ = godotenv.Load()

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)
	logger := zerologlog.Logger

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// Providers
	provider, err := ai.NewProvider(cfg.AI())
	if err != nil {
		logger.Fatal().Err(err).Msg("ai provider")
	}
	gen := ai.NewGenerator(provider, cfg.DefaultModel, logger)

	// Sessions
	var sessions session.Repository = session.NewMemoryRepository()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis")
		}
		cancel()
		sessions = session.NewRedisRepository(rdb, cfg.SessionTTL, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("sessions in redis")
	}

	// Notifications
	sock := ws.New(nil, logger)
	fanout := notify.NewFanout(logger, sock, notify.LogNotifier{Logger: logger})
	if cfg.RabbitMQURL != "" {
		ch, closeConn, err := notify.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("rabbitmq")
		}
		defer closeConn()
		pub, err := notify.NewRabbitPublisher(ch, cfg.RabbitExchange, cfg.PublishTimeout, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("rabbitmq")
		}
		fanout.Add(pub)
	}
	if cfg.ExportEnabled {
		fanout.Add(notify.Exporter{File: cfg.ExportFile, Logger: logger})
	}

	stories := game.NewStoryManager(game.Options{
		Words:        gen,
		Titles:       gen,
		Notifier:     fanout,
		Sessions:     sessions,
		TickInterval: cfg.TickInterval,
		WordTimeout:  cfg.WordTimeout,
		TitleTimeout: cfg.TitleTimeout,
		Logger:       logger,
	})
	defer stories.Shutdown()
	sock.SetStories(stories)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// GM-protected routes
	if cfg.GMUser != "" && cfg.GMPass != "" {
		auth := gin.BasicAuth(gin.Accounts{cfg.GMUser: cfg.GMPass})
		r.GET("/metrics", auth, gin.WrapH(promhttp.Handler()))
	} else {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api.New(stories, sessions, logger).Register(r)
	io := sock.Mount(r)
	defer io.Close()

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		logger.Info().Str("port", port).Str("provider", cfg.DefaultProvider).Str("model", cfg.DefaultModel).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
