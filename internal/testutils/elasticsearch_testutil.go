package testutils

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/ory/dockertest/v3"
)

// RunTestES returns the address of an elasticsearch node for tests.
// When ES_TEST_SERVER_URL is set that instance is used. Otherwise a single
// node cluster is started in docker.
func RunTestES(t *testing.T) (string, error) {
	t.Helper()

	if esURL, ok := os.LookupEnv("ES_TEST_SERVER_URL"); ok {
		return esURL, nil
	}

	c, err := startContainer(t, &dockertest.RunOptions{
		Repository: "docker.elastic.co/elasticsearch/elasticsearch",
		Tag:        "7.17.9",
		Env: []string{
			"discovery.type=single-node",
			"xpack.security.enabled=false",
			"ES_JAVA_OPTS=-Xms512m -Xmx512m",
		},
	}, 180)
	if err != nil {
		return "", fmt.Errorf("new test ES: %w", err)
	}

	esURL := "http://localhost:" + c.hostPort("9200/tcp")
	if err := c.waitReady(2*time.Minute, func() error {
		res, err := http.Get(esURL + "/_cat/health")
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("elasticsearch not ready: %s", res.Status)
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("new test ES: could not connect: %w", err)
	}

	return esURL, nil
}

// PurgeES deletes every index on the node.
func PurgeES(cli *elasticsearch.Client) error {
	res, err := cli.Indices.Delete([]string{"_all"})
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode > 299 && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("purge: elasticsearch server returned status code %d", res.StatusCode)
	}
	return nil
}
