package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gengocodes/gensupply-backend/config"
	"github.com/gengocodes/gensupply-backend/database"
	"github.com/gengocodes/gensupply-backend/logging"
	"github.com/gengocodes/gensupply-backend/server"
	"github.com/pressly/goose/v3"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run: start, migrate, create-migration")
	nameFlag := flag.String("name", "", "Migration name (alphanum+underscore only)")
	dirFlag := flag.String("dir", "./database/migrations/mysql", "Target directory for the new .sql file")
	flag.Parse()

	if *commandFlag == "create-migration" {
		if *nameFlag == "" {
			fmt.Println("Usage: go run main.go --command create-migration --name <name> [--dir <dir>]")
			os.Exit(1)
		}
		if err := goose.Create(nil, *dirFlag, *nameFlag, "sql"); err != nil {
			fmt.Fprintln(os.Stderr, "create migration:", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// The go-utils db helper logs through the package-global logger.
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	switch *commandFlag {
	case "start":
		err = server.StartServer(cfg, log)
	case "migrate":
		err = migrate(cfg, log)
	default:
		fmt.Println("Usage: go run main.go --command <start|migrate|create-migration> [... other options]")
		os.Exit(1)
	}

	if err != nil {
		log.Error("Command failed", zap.String("command", *commandFlag), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func migrate(cfg *config.Config, log *zap.Logger) error {
	dbConn, err := database.InitializeDatabase(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	return dbConn.Close()
}
