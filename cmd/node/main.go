package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/casperflow/casperflow/params"
	"github.com/casperflow/casperflow/pkg/api"
	"github.com/casperflow/casperflow/pkg/host"
	"github.com/casperflow/casperflow/pkg/state"
	"github.com/casperflow/casperflow/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("") // "" means load .env from current directory

	logger, err := util.NewLoggerWithFile(cfg.Node.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("node_starting",
		zap.String("data_dir", cfg.Node.DataDir),
		zap.String("listen", cfg.Node.ListenAddr),
	)

	store, err := state.NewStore(filepath.Join(cfg.Node.DataDir, "ledger"))
	if err != nil {
		logger.Fatal("store_open_failed", zap.Error(err))
	}
	defer store.Close()

	h := host.New(store, logger)
	if err := h.EnsureGenesis(cfg.Genesis); err != nil {
		logger.Fatal("genesis_failed", zap.Error(err))
	}

	server := api.NewServer(h, logger)
	go func() {
		if err := server.Start(cfg.Node.ListenAddr); err != nil {
			logger.Fatal("api_server_failed", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("node_shutting_down")
}
