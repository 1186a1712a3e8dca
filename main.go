package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/api"
	"github.com/linkme-io/linkme-backend/config"
	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/models"
	"github.com/linkme-io/linkme-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg := config.New()
	if config.GetString(cfg, "APP_ENV", "") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if prefix := config.GetString(cfg, "SSM_PARAMETER_PATH", ""); prefix != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		err := config.MergeSSM(ctx, cfg, prefix)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("prefix", prefix).Msg("loading SSM parameters")
		}
	}

	cc, err := database.ConnConfigFromEnv(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid database configuration")
	}
	log.Info().Str("dbType", cc.Type).Bool("replica", cc.ReplicaDSN != "").Msg("connecting to database")

	db, err := database.Open(cc)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(cfg, "GENERATE_MODELS", false) {
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("generating models")
		}
		return
	}

	// Report columns the models no longer map, then exit
	if config.GetBool(cfg, "GENERATE_COLUMN_REPORT", false) {
		if err := models.LogColumnDrift(db); err != nil {
			log.Fatal().Err(err).Msg("column report")
		}
		return
	}

	if config.GetBool(cfg, "AUTO_MIGRATE", cc.Type == "sqlite") {
		if err := models.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrating schema")
		}
	}

	deps := api.Deps{Config: cfg}

	store, err := services.NewS3AssetStoreFromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("configuring asset storage")
	}
	if store != nil {
		deps.Assets = store
	} else {
		log.Warn().Msg("S3_BUCKET not set; QR codes and uploads are disabled")
	}

	if path := strings.TrimSpace(config.GetString(cfg, "GEOIP_DB_PATH", "")); path != "" {
		geo, err := services.OpenMaxMindGeo(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("geoip database unavailable; visitor locations disabled")
		} else {
			defer geo.Close()
			deps.Geo = geo
		}
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(database.New(db), deps)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Err(fatalErr).Msg("closing server")

	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
