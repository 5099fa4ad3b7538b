package helper

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcqdrant "github.com/testcontainers/testcontainers-go/modules/qdrant"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabaseName     = "meetgraph"
	testDatabaseUsername = "meetgraph"
	testDatabasePassword = "meetgraph"
)

// MustStartPostgresContainer starts a pgvector enabled PostgreSQL container
// and returns its teardown function and mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUsername),
		postgres.WithPassword(testDatabasePassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", NewError("get mapped port", err)
	}

	return container.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs points the DB_* variables at a test container.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", port)
	t.Setenv("DB_DATABASE", testDatabaseName)
	t.Setenv("DB_USERNAME", testDatabaseUsername)
	t.Setenv("DB_PASSWORD", testDatabasePassword)
	t.Setenv("DB_SCHEMA", "public")
	t.Setenv("DB_SSLMODE", "disable")
}

// MustStartNeo4jContainer starts a Neo4j container without authentication
// and returns its teardown function and bolt URL.
func MustStartNeo4jContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := tcneo4j.Run(ctx, "neo4j:5.26", tcneo4j.WithoutAuthentication())
	if err != nil {
		return nil, "", NewError("start neo4j container", err)
	}

	boltURL, err := container.BoltUrl(ctx)
	if err != nil {
		return container.Terminate, "", NewError("get bolt url", err)
	}

	return container.Terminate, boltURL, nil
}

// MustStartQdrantContainer starts a Qdrant container and returns its
// teardown function with the gRPC host and port.
func MustStartQdrantContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, int, error) {
	ctx := context.Background()

	container, err := tcqdrant.Run(ctx, "qdrant/qdrant:v1.13.4")
	if err != nil {
		return nil, "", 0, NewError("start qdrant container", err)
	}

	endpoint, err := container.GRPCEndpoint(ctx)
	if err != nil {
		return container.Terminate, "", 0, NewError("get grpc endpoint", err)
	}

	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return container.Terminate, "", 0, NewError("split grpc endpoint", err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return container.Terminate, "", 0, NewError("parse grpc port", err)
	}

	return container.Terminate, host, port, nil
}
