package config

import (
	"github.com/ferdian3456/threadit/internal/observability"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const defaultServiceName = "threadit"

func LoadObservabilityConfig(config *koanf.Koanf, log *zap.Logger) observability.Config {
	observabilityConfig := observability.Config{
		OtelEndpoint: config.String("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelHeaders:  config.String("OTEL_EXPORTER_OTLP_HEADERS"),
		Insecure:     !config.Exists("OTEL_EXPORTER_OTLP_INSECURE") || config.Bool("OTEL_EXPORTER_OTLP_INSECURE"),
		ServiceName:  config.String("OTEL_SERVICE_NAME"),
		Environment:  config.String("ENVIRONMENT"),
		SampleRatio:  config.Float64("OTEL_TRACES_SAMPLER_ARG"),
	}

	if observabilityConfig.ServiceName == "" {
		log.Warn("OTEL_SERVICE_NAME is not set, using default", zap.String("service", defaultServiceName))
		observabilityConfig.ServiceName = defaultServiceName
	}

	return observabilityConfig
}
