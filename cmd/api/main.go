package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cache"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/catalog"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cloud"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/config"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/database"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/events"
	httpHandlers "github.com/AhmedAlsudairy/vale-project-sub000/internal/http"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(config.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	static, err := catalog.Load(config.StaticIdentifiersFile())
	if err != nil {
		log.Fatal().Err(err).Msg("identifier catalog load failed")
	}

	deps := service.Deps{
		StaticIdentifiers: static,
		PublicBaseURL:     config.PublicBaseURL(),
		FailureRate:       config.FailureRatePerYear(),
		ServiceInterval:   config.ServiceInterval(),
	}

	if addr := config.RedisAddr(); addr != "" {
		rdb, err := cache.Connect(ctx, addr)
		if err != nil {
			log.Warn().Err(err).Msg("status cache disabled")
		} else {
			defer rdb.Close()
			deps.Status = cache.NewStatusBoard(rdb)
		}
	}

	if broker := config.MQTTBroker(); broker != "" {
		client, err := events.Dial(broker, "maintenance-api")
		if err != nil {
			log.Warn().Err(err).Msg("record events disabled")
		} else {
			defer client.Disconnect(250)
			deps.Events = events.NewPublisher(client, config.MQTTEventsTopic())
		}
	}

	if config.UseCloudServices() {
		cfg, err := cloud.LoadConfig(ctx, config.AWSRegion())
		if err != nil {
			log.Fatal().Err(err).Msg("aws config failed")
		}
		if bucket := config.S3Bucket(); bucket != "" {
			deps.Uploader = cloud.NewS3Client(cfg, bucket)
		}
		if arn := config.SNSTopicArn(); arn != "" {
			deps.Notifier = cloud.NewSNSClient(cfg, arn)
		}
		if table := config.AlertsTable(); table != "" {
			deps.Alerts = cloud.NewDynamoDBClient(cfg, table)
		}
		if fn := config.ExportLambda(); fn != "" {
			deps.Exports = cloud.NewLambdaClient(cfg, fn)
		}
		log.Info().Str("region", config.AWSRegion()).Msg("cloud services enabled")
	}

	svcs := service.New(db, deps)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(httpHandlers.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	httpHandlers.Register(app, svcs)

	addr := config.APIAddr()
	go func() {
		log.Info().Str("addr", addr).Msg("api listening")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server exit")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
