package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/bunnyq"
	"github.com/summitair/inventory-service/api"
	"github.com/summitair/inventory-service/config"
	"github.com/summitair/inventory-service/core/catalog"
	"github.com/summitair/inventory-service/core/stock"
	"github.com/summitair/inventory-service/db"
	"github.com/summitair/inventory-service/db/catrepo"
	"github.com/summitair/inventory-service/db/memrepo"
	"github.com/summitair/inventory-service/db/stockrepo"
	"github.com/summitair/inventory-service/queue"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()

	configLogging(cfg)
	printLogHeader(cfg)
	cfg.Print()

	stockRepo, catalogRepo := configRepos(ctx, cfg)
	bq := rabbit(cfg)
	q := configStockQueue(bq, cfg)

	log.Info().Msg("creating catalog service...")
	catalogService := catalog.NewService(catalogRepo)

	log.Info().Msg("creating stock service...")
	stockService := stock.NewService(stockRepo, q)

	log.Info().Msg("configuring metrics...")
	api.ConfigureMetrics()

	log.Info().Msg("configuring router...")
	r := api.ConfigureRouter(cfg, catalogService, stockService)

	if !cfg.RabbitMQ.Mock {
		log.Info().Msg("consuming catalog items...")
		itemQueue := configItemQueue(bq, cfg)
		go itemQueue.ConsumeItems(context.Background(), catalogService)
	}

	log.Info().Str("port", cfg.Port).Msg("listening")
	log.Fatal().Err(http.ListenAndServe(":"+cfg.Port, r))
}

func configRepos(ctx context.Context, cfg *config.Config) (stock.Repository, catalog.Repository) {
	if cfg.Db.InMemory {
		log.Info().Msg("using in-memory store...")
		store := memrepo.NewStore()
		return store.Stock(), store.Catalog()
	}

	dbPool := configDatabase(ctx, cfg)
	return stockrepo.NewPostgresRepo(dbPool), catrepo.NewPostgresRepo(dbPool)
}

func configStockQueue(bq *bunnyq.BunnyQ, cfg *config.Config) (q stock.Queue) {
	if cfg.RabbitMQ.Mock {
		log.Info().Msg("creating mock queue...")
		return queue.NewMockQueue()
	}

	log.Info().Msg("connecting to rabbitmq...")
	return queue.New(bq, cfg.RabbitMQ.Movement.Exchange, cfg.RabbitMQ.Reservation.Exchange)
}

func configItemQueue(bq *bunnyq.BunnyQ, cfg *config.Config) *queue.ItemQueue {
	return queue.NewItemQueue(bq, cfg.RabbitMQ.Item.Queue, cfg.RabbitMQ.Item.Dlt.Exchange)
}

func rabbit(cfg *config.Config) *bunnyq.BunnyQ {
	if cfg.RabbitMQ.Mock {
		return nil
	}

	osChannel := make(chan os.Signal, 1)
	signal.Notify(osChannel, syscall.SIGTERM)

	return bunnyq.New(context.Background(),
		bunnyq.Address{
			User: cfg.RabbitMQ.User,
			Pass: cfg.RabbitMQ.Pass,
			Host: cfg.RabbitMQ.Host,
			Port: cfg.RabbitMQ.Port,
		},
		osChannel,
		bunnyq.LogHandler(logger{}),
	)
}

type logger struct {
}

func (l logger) Log(_ context.Context, level bunnyq.LogLevel, msg string, data map[string]interface{}) {
	var evt *zerolog.Event
	switch level {
	case bunnyq.LogLevelTrace:
		evt = log.Trace()
	case bunnyq.LogLevelDebug:
		evt = log.Debug()
	case bunnyq.LogLevelInfo:
		evt = log.Info()
	case bunnyq.LogLevelWarn:
		evt = log.Warn()
	case bunnyq.LogLevelError:
		evt = log.Error()
	case bunnyq.LogLevelNone:
		evt = log.Info()
	default:
		evt = log.Info()
	}

	for k, v := range data {
		evt.Interface(k, v)
	}

	evt.Msg(msg)
}

func printLogHeader(cfg *config.Config) {
	if cfg.Log.Structured {
		log.Info().Str("application", cfg.AppName).
			Str("revision", cfg.Revision).
			Str("version", cfg.AppVersion).
			Str("sha1ver", cfg.Sha1Version).
			Str("build-time", cfg.BuildTime).
			Str("profile", cfg.Profile).
			Str("config-source", cfg.Config.Source).
			Str("config-branch", cfg.Config.Spring.Branch).
			Send()
	} else {
		f := figure.NewFigure(cfg.AppName, "", true)
		f.Print()

		log.Info().Msg("=============================================")
		log.Info().Msg(fmt.Sprintf("       Revision: %s", cfg.Revision))
		log.Info().Msg(fmt.Sprintf("        Profile: %s", cfg.Profile))
		log.Info().Msg(fmt.Sprintf("  Config Server: %s - %s", cfg.Config.Source, cfg.Config.Spring.Branch))
		log.Info().Msg(fmt.Sprintf("    Tag Version: %s", cfg.AppVersion))
		log.Info().Msg(fmt.Sprintf("   Sha1 Version: %s", cfg.Sha1Version))
		log.Info().Msg(fmt.Sprintf("     Build Time: %s", cfg.BuildTime))
		log.Info().Msg("=============================================")
	}
}

func configDatabase(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	log.Info().Str("host", cfg.Db.Host).Str("name", cfg.Db.Name).Msg("connecting to the database...")

	if cfg.Db.Migrate {
		log.Info().Msg("executing migrations")

		if err := db.RunMigrations(
			cfg.Db.Host,
			cfg.Db.Name,
			cfg.Db.Port,
			cfg.Db.User,
			cfg.Db.Pass,
			cfg.Db.Clean); err != nil {
			log.Warn().Err(err).Msg("error executing migrations")
		}
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		cfg.Db.Host, cfg.Db.Port, cfg.Db.User, cfg.Db.Pass, cfg.Db.Name)

	for {
		dbPool, err := db.ConnectDb(ctx, connStr, db.MinPoolConns(10), db.MaxPoolConns(50))
		if err != nil {
			log.Error().Err(err).Msg("failed to create connection pool... retrying")
			time.Sleep(1 * time.Second)
			continue
		}
		return dbPool
	}
}

func configLogging(cfg *config.Config) {
	log.Info().Msg("configuring logging...")

	if !cfg.Log.Structured {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("loglevel", cfg.Log.Level).Err(err).Msg("defaulting to info")
		level = zerolog.InfoLevel
	}
	log.Info().Str("loglevel", level.String()).Msg("setting log level")
	zerolog.SetGlobalLevel(level)
}
