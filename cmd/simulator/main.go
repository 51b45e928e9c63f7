package main

import (
	"encoding/json"
	"flag"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/config"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/events"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/service"
)

// hotspots are the components a camera frames on an ESP transformer.
var hotspots = []string{"HV Bushing", "LV Bushing", "Tank Top", "Rectifier", "Cable Box"}

func main() {
	tag := flag.String("tag", "ESP-T1", "equipment tag the samples belong to")
	count := flag.Int("n", 20, "number of samples")
	interval := flag.Duration("every", 500*time.Millisecond, "delay between samples")
	flag.Parse()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	client, err := events.Dial(config.MQTTBroker(), "maintenance-simulator")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	topic := config.MQTTThermoTopic()
	base := 45 + rand.Float64()*10
	for i := 0; i < *count; i++ {
		points := make(map[string]float64, len(hotspots))
		for _, h := range hotspots {
			// slow drift plus noise; an occasional hot joint pushes past 80 °C
			points[h] = base + float64(i)*0.4 + rand.Float64()*6
			if rand.Intn(15) == 0 {
				points[h] += 30
			}
		}
		ambient := 28 + rand.Float64()*8
		smp := service.CameraSample{
			TagNo:     *tag,
			Inspector: "simulator",
			Timestamp: time.Now().UTC(),
			Points:    points,
			AmbientC:  &ambient,
		}
		payload, err := json.Marshal(smp)
		if err != nil {
			log.Fatal().Err(err).Msg("marshal sample")
		}
		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Msg("publish failed")
		}
		time.Sleep(*interval)
	}
	log.Info().Int("samples", *count).Msg("simulation done")
}
