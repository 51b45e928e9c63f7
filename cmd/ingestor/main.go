package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cache"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/config"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/database"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/events"
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

	client, err := events.Dial(config.MQTTBroker(), "maintenance-ingestor")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	deps := service.Deps{Events: events.NewPublisher(client, config.MQTTEventsTopic())}
	if rdb, err := cache.Connect(ctx, config.RedisAddr()); err != nil {
		log.Warn().Err(err).Msg("status cache disabled")
	} else {
		defer rdb.Close()
		deps.Status = cache.NewStatusBoard(rdb)
	}
	svcs := service.New(db, deps)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		v, err := svcs.Thermography.FromMQTT(ctx, msg.Topic(), msg.Payload())
		if err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("ingest failed")
			return
		}
		log.Info().Int64("id", v.ID).Str("tag", v.TagNo).Str("band", string(v.Band)).Msg("thermography session stored")
	}

	topic := config.MQTTThermoTopic()
	if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", topic).Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
}
