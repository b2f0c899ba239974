package config

import (
	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var requiredKeys = []string{
	"POSTGRES_URL",
	"REDIS_URL",
	"MINIO_URL",
	"MINIO_BUCKET_NAME",
	"JWT_SECRET_KEY",
}

var defaults = map[string]any{
	"GO_SERVER":                 ":8080",
	"MINIO_HTTP":                "http://",
	"COMMENT_ORPHAN_POLICY":     constant.COMMENT_ORPHAN_POLICY_FAIL,
	"COMMENT_CACHE_TTL_SECONDS": int(constant.DEFAULT_COMMENT_CACHE_TTL.Seconds()),
}

// NewKoanf loads .env when present, then lets the process env override it.
// Missing required keys stop the process.
func NewKoanf(log *zap.Logger) *koanf.Koanf {
	k := koanf.New(".")

	err := k.Load(file.Provider(".env"), dotenv.Parser())
	if err != nil {
		// containers get their values from the env only
		log.Debug(".env file not loaded, using environment variables", zap.Error(err))
	}

	err = k.Load(env.Provider("", ".", nil), nil)
	if err != nil {
		log.Fatal("failed to load environment variables", zap.Error(err))
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			_ = k.Set(key, value)
		}
	}

	missing := []string{}
	for _, key := range requiredKeys {
		if k.String(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		log.Fatal("missing required configuration", zap.Strings("keys", missing))
	}

	policy := k.String("COMMENT_ORPHAN_POLICY")
	if policy != constant.COMMENT_ORPHAN_POLICY_FAIL && policy != constant.COMMENT_ORPHAN_POLICY_REATTACH {
		log.Fatal("invalid COMMENT_ORPHAN_POLICY", zap.String("value", policy))
	}

	return k
}
