package main

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomz197/ballcatch/internal/config"
	"github.com/tomz197/ballcatch/internal/logging"
)

//go:embed index.html
var htmlPage string

func main() {
	logger := logging.New(config.GetEnv("LOG_LEVEL", config.DefaultLogLevel), os.Stderr)

	cfg, err := config.Load(config.GetEnv("BALLCATCH_CONFIG", ""))
	if err != nil {
		logger.Fatal("load config", "err", err)
	}

	host := config.GetEnv("WEB_HOST", cfg.Web.Host)
	port := config.GetEnvInt("WEB_PORT", cfg.Web.Port)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", cfg.Web.SSHDisplayHost)

	srv := &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:           newMux(htmlPage, sshHost, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting web server", "addr", "http://"+srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down web server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}
