// Package main provides the entry point for the Recall server.
// The server answers web-search queries with a model completion grounded in
// the caller's remembered context: every query becomes a memory, and every
// answer is streamed back over plain HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	log "github.com/sirupsen/logrus"

	"github.com/recallweb/recall/internal/api"
	"github.com/recallweb/recall/internal/api/handlers"
	"github.com/recallweb/recall/internal/auth"
	"github.com/recallweb/recall/internal/buildinfo"
	"github.com/recallweb/recall/internal/config"
	"github.com/recallweb/recall/internal/conversation"
	"github.com/recallweb/recall/internal/logging"
	"github.com/recallweb/recall/internal/search"
	"github.com/recallweb/recall/internal/usage"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	var configPath string
	var login bool
	var showVersion bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&login, "login", false, "open the sign-in page in a browser after startup")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("recall %s (commit %s, built %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("could not load .env file")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	logging.Configure(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})

	watcher, err := config.NewWatcher(configPath, cfg)
	if err != nil {
		log.WithError(err).Warn("config watcher unavailable, changes require a restart")
	} else {
		watcher.OnReload(func(next *config.Config) {
			logging.Configure(logging.Options{
				Level:      next.Logging.Level,
				File:       next.Logging.File,
				MaxSizeMB:  next.Logging.MaxSizeMB,
				MaxBackups: next.Logging.MaxBackups,
			})
			log.Info("configuration reloaded")
		})
		defer watcher.Stop()
	}

	getCfg := func() *config.Config {
		if watcher != nil {
			return watcher.Current()
		}
		return cfg
	}

	var sessions *auth.Sessions
	if cfg.Auth.SessionSecret != "" {
		sessions, err = auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
		if err != nil {
			log.WithError(err).Fatal("invalid session configuration")
		}
	} else {
		log.Warn("no session secret configured, authenticated routes will refuse requests")
	}
	google := auth.NewGoogle(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.RedirectURL)

	cache := search.NewCache(search.CacheConfig{
		MaxSize: cfg.Search.CacheMaxSize,
		TTL:     cfg.Search.CacheTTL,
	})
	evictionStop := make(chan struct{})
	cache.StartEviction(search.DefaultEvictionInterval, evictionStop)
	defer close(evictionStop)

	stats := usage.NewStatistics()
	h := handlers.New(getCfg, sessions, google, cache, conversation.NewStore(), stats)
	server := api.New(getCfg, h, stats)

	if login {
		go openSignIn(cfg.Server.Addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		if err != nil {
			log.WithError(err).Fatal("server failed")
		}
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutdown requested")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err = server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("shutdown did not complete cleanly")
		}
	}
}

// openSignIn points the local browser at the sign-in route once the
// listener has had a moment to come up.
func openSignIn(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.WithError(err).Warn("cannot derive sign-in URL from listen address")
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	url := fmt.Sprintf("http://%s/auth/login", net.JoinHostPort(host, port))
	log.WithField("url", url).Info("opening sign-in page")

	time.Sleep(500 * time.Millisecond)
	if err = browser.OpenURL(url); err != nil {
		log.WithError(err).WithField("url", url).Warn("could not open browser, visit the URL manually")
	}
}
