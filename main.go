package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/usersapi/config"
	"github.com/padraicbc/usersapi/db"
	"github.com/padraicbc/usersapi/handlers"
	applog "github.com/padraicbc/usersapi/logger"
	"github.com/padraicbc/usersapi/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb, err := db.Setup(context.Background(), cfg)
	if err != nil {
		logger.Fatal("database setup failed", zap.Error(err))
	}
	defer bdb.Close()

	h := handlers.New(bdb, cfg.PG.WaitTimeout, logger)
	e := server.New(h, logger)

	if len(cfg.TLSDomains) == 0 {
		logger.Info("server running", zap.String("addr", "http://"+cfg.ServerAddr+"/"))
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	logger.Info("server running", zap.String("addr", "https://"+cfg.ServerAddr+"/"), zap.Strings("domains", cfg.TLSDomains))
	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Fatal("tls server exited", zap.Error(err))
	}
}
