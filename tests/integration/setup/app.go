package setup

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/ferdian3456/threadit/internal/config"
	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const TestBucketName = "threadit-test"

type TestEnv struct {
	App        *fiber.App
	DB         *pgxpool.Pool
	Redis      *redis.Client
	MinIO      *minio.Client
	Config     *koanf.Koanf
	MailhogURL string
}

// NewTestConfig returns the configuration the API would normally read from
// .env, pointed at the test containers.
func NewTestConfig(t *testing.T, infra *TestInfra, overrides map[string]any) *koanf.Koanf {
	smtpHost, smtpPortRaw, ok := strings.Cut(infra.MailhogSMTP, ":")
	require.True(t, ok, "mailhog smtp address should be host:port")
	smtpPort, err := strconv.Atoi(smtpPortRaw)
	require.NoError(t, err)

	values := map[string]any{
		"JWT_SECRET_KEY":            "test-secret-key-for-jwt-token-generation",
		"MINIO_URL":                 infra.MinioURL,
		"MINIO_HTTP":                "http://",
		"MINIO_BUCKET_NAME":         TestBucketName,
		"MINIO_USER":                minioUser,
		"MINIO_PASSWORD":            minioPassword,
		"SMTP_HOST":                 smtpHost,
		"SMTP_PORT":                 smtpPort,
		"SENDER_NAME":               "Threadit Test",
		"SENDER_EMAIL":              "noreply@threadit.test",
		"SENDER_PASSWORD":           "",
		"RATE_LIMIT_MAX":            10000,
		"AUTH_RATE_LIMIT_MAX":       10000,
		"COMMENT_CACHE_TTL_SECONDS": 600,
		"COMMENT_ORPHAN_POLICY":     constant.COMMENT_ORPHAN_POLICY_FAIL,
	}
	for key, value := range overrides {
		values[key] = value
	}

	k := koanf.New(".")
	for key, value := range values {
		require.NoError(t, k.Set(key, value))
	}

	return k
}

// SetupTestApp builds the same fiber app cmd/main.go serves, backed by the
// test containers.
func SetupTestApp(t *testing.T, infra *TestInfra, cfg *koanf.Koanf) *TestEnv {
	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, infra.PgURL)
	require.NoError(t, err, "failed to connect to test postgres")
	t.Cleanup(dbPool.Close)

	redisClient := redis.NewClient(&redis.Options{
		Addr: infra.RedisURL,
	})
	require.NoError(t, redisClient.Ping(ctx).Err(), "failed to connect to test redis")
	t.Cleanup(func() { _ = redisClient.Close() })

	minioClient, err := minio.New(infra.MinioURL, &minio.Options{
		Creds:  credentials.NewStaticV4(minioUser, minioPassword, ""),
		Secure: false,
	})
	require.NoError(t, err, "failed to create minio client")

	exists, err := minioClient.BucketExists(ctx, TestBucketName)
	require.NoError(t, err, "failed to check minio bucket")
	if !exists {
		require.NoError(t, minioClient.MakeBucket(ctx, TestBucketName, minio.MakeBucketOptions{}))
	}

	log := zap.NewNop()
	app := config.NewFiber(log)

	config.Server(&config.ServerConfig{
		Router:  app,
		DB:      dbPool,
		DBCache: redisClient,
		Log:     log,
		Config:  cfg,
		MinIO:   minioClient,
	})

	return &TestEnv{
		App:        app,
		DB:         dbPool,
		Redis:      redisClient,
		MinIO:      minioClient,
		Config:     cfg,
		MailhogURL: infra.MailhogURL,
	}
}

// NewTestEnv starts the containers, migrates the schema and returns a ready
// app. Everything is torn down when the test finishes.
func NewTestEnv(t *testing.T, overrides map[string]any) *TestEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	infra, err := StartInfra(ctx, t)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = infra.Terminate(ctx, t)
	})

	require.NoError(t, RunMigration(infra.PgURL, t))

	env := SetupTestApp(t, infra, NewTestConfig(t, infra, overrides))

	return env
}

// Reset clears rows and cached comment snapshots between subtests.
func (env *TestEnv) Reset(t *testing.T) {
	ctx := context.Background()

	TruncateAllTables(t, env.DB, ctx)
	require.NoError(t, env.Redis.FlushDB(ctx).Err())
}
