package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/goto/salt/log"
	"github.com/newrelic/go-agent/v3/integrations/nrelasticsearch-v7"
)

const defaultEdgeIndex = "lineage_edges"

type Config struct {
	Brokers   string `mapstructure:"brokers" default:"http://localhost:9200"`
	EdgeIndex string `mapstructure:"edge_index" default:"lineage_edges"`
	// PageSize is the number of documents fetched per search round trip.
	PageSize int `mapstructure:"page_size" default:"1000"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// errorReasonFromResponse extracts the error reason of a failed response,
// falling back to the raw body.
func errorReasonFromResponse(res *esapi.Response) string {
	reason, _ := decodeErrorResponse(res)
	return reason
}

func decodeErrorResponse(res *esapi.Response) (reason, errType string) {
	var (
		response errorResponse
		raw      bytes.Buffer
	)
	if err := json.NewDecoder(io.TeeReader(res.Body, &raw)).Decode(&response); err != nil {
		return fmt.Sprintf("raw response = %s", raw.String()), ""
	}
	return response.Error.Reason, response.Error.Type
}

// elasticSearchError decorates transport failures of the es REST API.
func elasticSearchError(err error) error {
	return fmt.Errorf("elasticsearch error: %w", err)
}

type Client struct {
	client    *elasticsearch.Client
	logger    log.Logger
	edgeIndex string
	pageSize  int
}

func NewClient(logger log.Logger, config Config, opts ...ClientOption) (*Client, error) {
	c := &Client{
		logger:    logger,
		edgeIndex: config.EdgeIndex,
		pageSize:  config.PageSize,
	}
	if c.edgeIndex == "" {
		c.edgeIndex = defaultEdgeIndex
	}
	if c.pageSize <= 0 {
		c.pageSize = 1000
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client != nil {
		return c, nil
	}

	brokers := strings.Split(config.Brokers, ",")
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: brokers,
		Transport: nrelasticsearch.NewRoundTripper(nil),
	})
	if err != nil {
		return nil, err
	}
	c.client = esClient

	return c, nil
}

type clusterInfo struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// Init returns a description of the cluster the client talks to.
func (c *Client) Init() (string, error) {
	res, err := c.client.Info()
	if err != nil {
		return "", elasticSearchError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", fmt.Errorf("cluster info: %s: %s", res.Status(), errorReasonFromResponse(res))
	}

	var info clusterInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode cluster info: %w", err)
	}
	if !strings.HasPrefix(info.Version.Number, "7.") {
		c.logger.Warn("edge index mapping targets elasticsearch 7", "server_version", info.Version.Number)
	}

	return fmt.Sprintf("%q (server version %s)", info.ClusterName, info.Version.Number), nil
}

// Migrate creates the edge index, or puts the current mapping when the
// index already exists.
func (c *Client) Migrate(ctx context.Context) error {
	exists, err := c.indexExists(ctx, c.edgeIndex)
	if err != nil {
		return fmt.Errorf("migrate edge index: %w", err)
	}
	if !exists {
		if err := c.createIdx(ctx); err != nil {
			return fmt.Errorf("migrate edge index: %w", err)
		}
		return nil
	}

	c.logger.Info("index already exist, updating it instead", "index", c.edgeIndex)
	res, err := c.client.Indices.PutMapping(
		strings.NewReader(edgeIndexMapping),
		c.client.Indices.PutMapping.WithIndex(c.edgeIndex),
		c.client.Indices.PutMapping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("migrate edge index: %w", elasticSearchError(err))
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("migrate edge index: update %q: %s", c.edgeIndex, errorReasonFromResponse(res))
	}
	return nil
}

// createIdx creates the edge index. Losing a creation race to another
// writer is not an error.
func (c *Client) createIdx(ctx context.Context) error {
	res, err := c.client.Indices.Create(
		c.edgeIndex,
		c.client.Indices.Create.WithBody(strings.NewReader(buildEdgeIndexSettings())),
		c.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return elasticSearchError(err)
	}
	defer res.Body.Close()
	if !res.IsError() {
		return nil
	}

	reason, errType := decodeErrorResponse(res)
	if errType == "resource_already_exists_exception" {
		return nil
	}
	return fmt.Errorf("error creating index %q: %s", c.edgeIndex, reason)
}

func (c *Client) indexExists(ctx context.Context, name string) (bool, error) {
	res, err := c.client.Indices.Exists(
		[]string{name},
		c.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("index exists: %w", elasticSearchError(err))
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("index exists: unexpected status %s", res.Status())
	}
}
