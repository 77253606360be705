package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newDockerPool returns a ready pool or skips the test when docker is not usable.
func newDockerPool(t *testing.T) *dockertest.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping docker based test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Skipf("Could not connect to Docker: %+v", err)
	}
	pool.MaxWait = 2 * time.Minute
	return pool
}

func startRedisDockerContainer(t *testing.T) (string, string, func()) {
	t.Helper()
	pool := newDockerPool(t)

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// ensure to wait for the container to be ready
	port := resource.GetPort("6379/tcp")
	addr := net.JoinHostPort("localhost", port)
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})
	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return "localhost", port, destroyFunc
}

func TestRedisStorages(t *testing.T) {
	host, port, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()

	config := &Config{Redis: RedisConfig{Host: host, Port: port}}
	config.Storage.Backend = RedisBackend
	s, err := NewStorages(zap.NewNop(), config)
	require.NoError(t, err)
	defer s.Close(context.Background())

	testStoragesContract(t, s)

	t.Run("Queue Round Trip", func(t *testing.T) {
		client, err := GetRedisClient(config)
		require.NoError(t, err)
		defer client.Close()

		q := NewRedisQueue(client)
		event := ChangeEvent{Collection: BooksCollection, ID: "1", Record: []byte(`{"title":"Dune"}`)}
		require.NoError(t, q.Push(context.Background(), UpdateQueue, event))

		qid, got, err := q.Pop(context.Background(), CreateQueue, UpdateQueue, DeleteQueue)
		require.NoError(t, err)
		assert.Equal(t, UpdateQueue, qid)
		assert.Equal(t, event.Collection, got.Collection)
		assert.JSONEq(t, string(event.Record), string(got.Record))
	})
}
