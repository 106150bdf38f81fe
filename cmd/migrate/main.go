package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/careconnect/careconnect-api/internal/config"
	"github.com/careconnect/careconnect-api/internal/repository/postgres"
	"github.com/careconnect/careconnect-api/pkg/logger"
)

func main() {
	steps := flag.Int("steps", 0, "number of migrations to roll back with down (0 = all)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-steps n] up|down|version\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.New(cfg.Log)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = postgres.MigrateUp(db.DB)
	case "down":
		err = postgres.MigrateDown(db.DB, *steps)
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = postgres.MigrationVersion(db.DB)
		if err == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Str("command", flag.Arg(0)).Msg("migration complete")
}
