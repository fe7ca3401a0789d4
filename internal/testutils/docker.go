package testutils

import (
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

type container struct {
	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// startContainer runs a throwaway container that docker removes once it
// stops. The test is skipped when no docker daemon is reachable.
func startContainer(t *testing.T, opts *dockertest.RunOptions, expire uint) (*container, error) {
	t.Helper()

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("create dockertest pool: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	resource, err := pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Repository, err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Fatal(err)
		}
	})

	// hard kill the container if cleanup never runs
	if err := resource.Expire(expire); err != nil {
		return nil, err
	}

	return &container{pool: pool, resource: resource}, nil
}

// waitReady retries ping with exponential backoff until it succeeds or
// maxWait elapses.
func (c *container) waitReady(maxWait time.Duration, ping func() error) error {
	c.pool.MaxWait = maxWait
	return c.pool.Retry(ping)
}

func (c *container) hostPort(id string) string {
	return c.resource.GetPort(id)
}
