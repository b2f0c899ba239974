package setup

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

type TestInfra struct {
	Postgres *postgres.PostgresContainer
	Redis    *redis.RedisContainer
	MinIO    testcontainers.Container
	MailHog  testcontainers.Container

	PgURL       string
	RedisURL    string
	MinioURL    string
	MailhogURL  string
	MailhogSMTP string
}

// StartInfra boots every backing service the API talks to. Containers that
// started before a failure are terminated before returning.
func StartInfra(ctx context.Context, t *testing.T) (*TestInfra, error) {
	infra := &TestInfra{}

	err := infra.startPostgres(ctx)
	if err == nil {
		err = infra.startRedis(ctx)
	}
	if err == nil {
		err = infra.startMinIO(ctx)
	}
	if err == nil {
		err = infra.startMailHog(ctx)
	}

	if err != nil {
		_ = infra.Terminate(ctx, t)
		return nil, err
	}

	t.Logf("infra ready: postgres=%s redis=%s minio=%s mailhog=%s", infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogURL)

	return infra, nil
}

func (infra *TestInfra) startPostgres(ctx context.Context) error {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("threadit_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return fmt.Errorf("start postgres: %w", err)
	}
	infra.Postgres = container

	infra.PgURL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("postgres connection string: %w", err)
	}

	return nil
}

func (infra *TestInfra) startRedis(ctx context.Context) error {
	container, err := redis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections"),
		),
	)
	if err != nil {
		return fmt.Errorf("start redis: %w", err)
	}
	infra.Redis = container

	infra.RedisURL, err = endpoint(ctx, container, "6379")
	if err != nil {
		return fmt.Errorf("redis endpoint: %w", err)
	}

	return nil
}

func (infra *TestInfra) startMinIO(ctx context.Context) error {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "minio/minio:latest",
			Cmd:   []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			ExposedPorts: []string{"9000/tcp"},
			WaitingFor:   wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("start minio: %w", err)
	}
	infra.MinIO = container

	infra.MinioURL, err = endpoint(ctx, container, "9000")
	if err != nil {
		return fmt.Errorf("minio endpoint: %w", err)
	}

	return nil
}

func (infra *TestInfra) startMailHog(ctx context.Context) error {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mailhog/mailhog:latest",
			ExposedPorts: []string{"1025/tcp", "8025/tcp"},
			WaitingFor:   wait.ForListeningPort("1025/tcp"),
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("start mailhog: %w", err)
	}
	infra.MailHog = container

	infra.MailhogSMTP, err = endpoint(ctx, container, "1025")
	if err != nil {
		return fmt.Errorf("mailhog smtp endpoint: %w", err)
	}

	api, err := endpoint(ctx, container, "8025")
	if err != nil {
		return fmt.Errorf("mailhog api endpoint: %w", err)
	}
	infra.MailhogURL = "http://" + api

	return nil
}

func endpoint(ctx context.Context, container testcontainers.Container, port nat.Port) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%s", host, mapped.Port()), nil
}

func (infra *TestInfra) Terminate(ctx context.Context, t *testing.T) error {
	containers := map[string]testcontainers.Container{
		"mailhog": infra.MailHog,
		"minio":   infra.MinIO,
	}
	if infra.Postgres != nil {
		containers["postgres"] = infra.Postgres
	}
	if infra.Redis != nil {
		containers["redis"] = infra.Redis
	}

	var firstErr error
	for name, container := range containers {
		if container == nil {
			continue
		}

		err := container.Terminate(ctx)
		if err != nil {
			t.Logf("failed to terminate %s: %v", name, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("terminate %s: %w", name, err)
			}
		}
	}

	return firstErr
}
