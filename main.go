package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"task-manager/config"
	"task-manager/database"
	"task-manager/server"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run: start, migrate, create-migration")
	nameFlag := flag.String("name", "", "Migration name (alphanum+underscore only)")
	dirFlag := flag.String("dir", "", "Target directory for the new .sql file (default: ./database/migrations/<dialect of -driver>)")
	driverFlag := flag.String("driver", "sqlite3", "Database driver the new migration targets (sqlite3 or pgx)")
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <command-name> [... other options]")
		os.Exit(1)
	}

	server.InitLogger()

	switch *commandFlag {
	case "start":
		server.StartServer(mustLoadConfig())
	case "migrate":
		cfg := mustLoadConfig()
		dbConn, err := database.InitializeDatabase(context.Background(), cfg.Database)
		if err != nil {
			logger.Error("Migration failed", zap.Error(err))
			os.Exit(1)
		}
		dbConn.Close()
	case "create-migration":
		if err := database.CreateMigration(*driverFlag, *nameFlag, *dirFlag); err != nil {
			logger.Error("Could not create migration", zap.Error(err))
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command %q\n", *commandFlag)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		os.Exit(1)
	}
	return cfg
}
