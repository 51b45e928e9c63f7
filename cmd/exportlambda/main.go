package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/cloud"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/config"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/database"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/export"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/service"
)

var (
	svcs     *service.Services
	uploader *cloud.S3Client
)

func setup() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(config.LogLevel())

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	cfg, err := cloud.LoadConfig(context.Background(), config.AWSRegion())
	if err != nil {
		log.Fatal().Err(err).Msg("aws config failed")
	}
	svcs = service.New(db, service.Deps{})
	uploader = cloud.NewS3Client(cfg, config.S3Bucket())
}

// resolveMonth defaults an empty month to the one before now.
func resolveMonth(month string, now time.Time) string {
	if month != "" {
		return month
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format("2006-01")
}

func Handler(ctx context.Context, req cloud.ExportRequest) (cloud.ExportResult, error) {
	month := resolveMonth(req.Month, time.Now().UTC())
	data, rows, err := svcs.Exports.Monthly(ctx, month)
	if err != nil {
		return cloud.ExportResult{}, fmt.Errorf("build export for %s: %w", month, err)
	}
	key := cloud.ExportKey("exports/"+month, ".xlsx")
	url, err := uploader.UploadSpreadsheet(ctx, key, data, export.ContentType)
	if err != nil {
		return cloud.ExportResult{}, err
	}
	log.Info().Str("month", month).Str("key", key).Int("rows", rows).Msg("monthly export stored")
	return cloud.ExportResult{Month: month, Key: key, URL: url, Rows: rows}, nil
}

func main() {
	setup()
	lambda.Start(Handler)
}
