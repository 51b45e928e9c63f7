// Command cloudcheck verifies the configured AWS resources end to end.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cloud"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/config"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/export"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/views"
)

func main() {
	notify := flag.Bool("notify", false, "publish a test notification")
	tag := flag.String("tag", "", "list logged alerts for this tag")
	month := flag.String("export", "", "run the monthly export for YYYY-MM and wait for it")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := cloud.LoadConfig(ctx, config.AWSRegion())
	if err != nil {
		log.Fatal().Err(err).Msg("aws config failed")
	}

	s3c := cloud.NewS3Client(cfg, config.S3Bucket())
	wb := export.NewWorkbook()
	if err := wb.AddThermography([]views.ThermographyView{}); err != nil {
		log.Fatal().Err(err).Msg("workbook build failed")
	}
	data, err := wb.Bytes()
	if err != nil {
		log.Fatal().Err(err).Msg("workbook build failed")
	}
	key := cloud.ExportKey("healthcheck", ".xlsx")
	url, err := s3c.UploadSpreadsheet(ctx, key, data, export.ContentType)
	if err != nil {
		log.Fatal().Err(err).Msg("s3 upload failed")
	}
	log.Info().Str("key", key).Str("url", url).Msg("s3 ok")

	keys, err := s3c.ListExports(ctx, "exports/")
	if err != nil {
		log.Fatal().Err(err).Msg("s3 list failed")
	}
	log.Info().Int("exports", len(keys)).Msg("stored monthly exports")

	if *notify {
		sns := cloud.NewSNSClient(cfg, config.SNSTopicArn())
		if err := sns.Send(ctx, "Maintenance log connectivity check", "Test message.\n\nSpreadsheet: "+url); err != nil {
			log.Fatal().Err(err).Msg("sns publish failed")
		}
		log.Info().Msg("sns ok")
	}

	if *tag != "" {
		alerts, err := cloud.NewDynamoDBClient(cfg, config.AlertsTable()).AlertsForTag(ctx, *tag)
		if err != nil {
			log.Fatal().Err(err).Msg("dynamodb query failed")
		}
		for _, a := range alerts {
			log.Info().Str("alert_id", a.AlertID).Str("severity", a.Severity).Bool("acknowledged", a.Acknowledged).Msg(a.Message)
		}
		log.Info().Int("alerts", len(alerts)).Msg("dynamodb ok")
	}

	if *month != "" {
		res, err := cloud.NewLambdaClient(cfg, config.ExportLambda()).InvokeExport(ctx, *month)
		if err != nil {
			log.Fatal().Err(err).Msg("export lambda failed")
		}
		log.Info().Str("key", res.Key).Int("rows", res.Rows).Str("url", res.URL).Msg("lambda ok")
	}
}
