// Package config holds run configuration: CLI flags with environment
// fallbacks, the built-in variable catalog, and target point parsing.
package config

import (
	"fmt"
	"time"
)

// Options are parsed from CLI flags, with environment variables as fallback
// for anything not flagged.
type Options struct {
	PointsFile string `long:"points" env:"POINTS_FILE" required:"true" description:"CSV file of target points, one latitude,longitude per line (optional header)"`

	RunDate   string `long:"run-date" env:"RUN_DATE" description:"latest forecast run date, YYYYMMDD; defaults to yesterday UTC"`
	Cycle     string `long:"cycle" env:"CYCLE" default:"06" description:"forecast cycle label, e.g. 06"`
	FileType  string `long:"file-type" env:"FILE_TYPE" default:"wrfnat" description:"HRRR product file type"`
	Lookback  int    `long:"lookback-hours" env:"LOOKBACK_HOURS" default:"48" description:"hours of forecast runs to look back from run-date"`
	HourStart int    `long:"forecast-hour-start" env:"FORECAST_HOUR_START" default:"0" description:"first forecast hour to fetch"`
	HourEnd   int    `long:"forecast-hour-end" env:"FORECAST_HOUR_END" default:"15" description:"last forecast hour to fetch (inclusive)"`

	Variables string `long:"variables" env:"VARIABLES" description:"comma-separated variable userNames to ingest; all when empty"`

	Bucket    string `long:"bucket" env:"S3_BUCKET" default:"noaa-hrrr-bdp-pds" description:"source S3 bucket"`
	AWSRegion string `long:"region" env:"AWS_REGION" default:"us-east-1" description:"AWS region for the source bucket"`
	Signed    bool   `long:"signed" env:"S3_SIGNED" description:"sign S3 requests instead of anonymous access"`

	DatabaseDSN string `long:"db" env:"DATABASE_DSN" required:"true" description:"postgres connection string"`
	TableName   string `long:"table" env:"TABLE_NAME" default:"hrrr_forecasts" description:"destination table name"`

	FetchTimeout  time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"5m" description:"per-object download timeout"`
	FetchAttempts int           `long:"fetch-attempts" env:"FETCH_ATTEMPTS" default:"3" description:"download attempts per object"`

	KafkaBrokers []string `long:"kafka-broker" env:"KAFKA_BROKERS" env-delim:"," description:"optional Kafka brokers; when set, extracted rows are also published"`
	KafkaTopic   string   `long:"kafka-topic" env:"KAFKA_TOPIC" default:"hrrr-point-observations" description:"Kafka sink topic"`

	HTTPAddr  string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"health/metrics listen address"`
	LogLevel  string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"debug, info, warn, or error"`
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"json" description:"json or text"`
}

// Validate checks cross-field constraints not expressible as flag tags.
func (o *Options) Validate() error {
	if o.Lookback <= 0 {
		return fmt.Errorf("lookback hours must be positive, got %d", o.Lookback)
	}
	if o.HourStart < 0 || o.HourEnd < o.HourStart {
		return fmt.Errorf("forecast hour range %d..%d is invalid", o.HourStart, o.HourEnd)
	}
	if o.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if o.FetchAttempts <= 0 {
		return fmt.Errorf("fetch attempts must be positive")
	}
	return nil
}

// KafkaEnabled reports whether the optional row sink should be wired.
func (o *Options) KafkaEnabled() bool {
	return len(o.KafkaBrokers) > 0
}
