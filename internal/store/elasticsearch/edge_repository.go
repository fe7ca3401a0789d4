package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/google/uuid"
	"github.com/goto/lineage/core/graph"
	"github.com/olivere/elastic/v7"
)

// EdgeRepository keeps one document per edge. The document id is derived
// from the edge triple so re-indexing an edge replaces it.
type EdgeRepository struct {
	cli *Client

	mu         sync.Mutex
	indexReady bool
}

func NewEdgeRepository(cli *Client) (*EdgeRepository, error) {
	if cli == nil {
		return nil, errors.New("elasticsearch client is nil")
	}
	return &EdgeRepository{
		cli: cli,
	}, nil
}

type edgeDocument struct {
	Source           string                 `json:"source"`
	Destination      string                 `json:"destination"`
	RelationshipType string                 `json:"relationship_type"`
	SourceType       string                 `json:"source_type"`
	DestinationType  string                 `json:"destination_type"`
	Properties       map[string]interface{} `json:"properties,omitempty"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func (d edgeDocument) toEdge() graph.Edge {
	return graph.Edge{
		Source:      graph.URN(d.Source),
		Destination: graph.URN(d.Destination),
		Type:        graph.RelationshipType(d.RelationshipType),
		Properties:  d.Properties,
	}
}

type edgeHit struct {
	ID     string        `json:"_id"`
	Source edgeDocument  `json:"_source"`
	Sort   []interface{} `json:"sort"`
}

type searchResponse struct {
	Hits struct {
		Hits []edgeHit `json:"hits"`
	} `json:"hits"`
}

type deleteByQueryResponse struct {
	Deleted  int `json:"deleted"`
	Failures []struct {
		ID    string `json:"id"`
		Cause struct {
			Reason string `json:"reason"`
		} `json:"cause"`
	} `json:"failures"`
}

var edgeIDNamespace = uuid.MustParse("5f0c3a4e-8d7e-4d0a-9a59-0f1b1f6b7c21")

// EdgeDocumentID returns the id of the document holding the edge.
func EdgeDocumentID(key graph.EdgeKey) string {
	name := strings.Join([]string{string(key.Source), string(key.Destination), string(key.Type)}, "\x00")
	return uuid.NewSHA1(edgeIDNamespace, []byte(name)).String()
}

func (repo *EdgeRepository) UpsertEdge(ctx context.Context, edge graph.Edge) error {
	if err := repo.ensureIndex(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(edgeDocument{
		Source:           string(edge.Source),
		Destination:      string(edge.Destination),
		RelationshipType: string(edge.Type),
		SourceType:       edge.Source.EntityType(),
		DestinationType:  edge.Destination.EntityType(),
		Properties:       edge.Properties,
		UpdatedAt:        time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("error serialising edge: %w", err)
	}

	client := repo.cli.client
	res, err := client.Index(
		repo.cli.edgeIndex,
		bytes.NewReader(body),
		client.Index.WithDocumentID(EdgeDocumentID(edge.Key())),
		client.Index.WithRefresh("true"),
		client.Index.WithContext(ctx),
	)
	if err != nil {
		return elasticSearchError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error response from elasticsearch: %s", errorReasonFromResponse(res))
	}
	return nil
}

func (repo *EdgeRepository) RemoveEdge(ctx context.Context, key graph.EdgeKey) error {
	client := repo.cli.client
	res, err := client.Delete(
		repo.cli.edgeIndex,
		EdgeDocumentID(key),
		client.Delete.WithRefresh("true"),
		client.Delete.WithContext(ctx),
	)
	if err != nil {
		return elasticSearchError(err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("error response from elasticsearch: %s", errorReasonFromResponse(res))
	}
	return nil
}

// RemoveEdgesFromNode deletes exactly the edges matched at call time.
// Documents elasticsearch fails to delete are reported in a
// graph.RemoveNodeError.
func (repo *EdgeRepository) RemoveEdgesFromNode(ctx context.Context, node graph.URN, filter graph.RelationshipFilter) (int, error) {
	query, err := incidentEdgesQuery(node, filter)
	if err != nil {
		return 0, err
	}

	hits, err := repo.searchEdges(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(hits) == 0 {
		return 0, nil
	}

	keys := make(map[string]graph.EdgeKey, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		keys[h.ID] = h.Source.toEdge().Key()
		ids = append(ids, h.ID)
	}

	body, err := buildQueryBody(elastic.NewIdsQuery().Ids(ids...))
	if err != nil {
		return 0, err
	}

	client := repo.cli.client
	res, err := client.DeleteByQuery(
		[]string{repo.cli.edgeIndex},
		body,
		client.DeleteByQuery.WithRefresh(true),
		client.DeleteByQuery.WithConflicts("proceed"),
		client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return 0, &graph.RemoveNodeError{Node: node, Failed: sortedKeys(keys), Err: elasticSearchError(err)}
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, &graph.RemoveNodeError{
			Node:   node,
			Failed: sortedKeys(keys),
			Err:    fmt.Errorf("error response from elasticsearch: %s", errorReasonFromResponse(res)),
		}
	}

	var resp deleteByQueryResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return 0, fmt.Errorf("error decoding delete by query response: %w", err)
	}

	if len(resp.Failures) > 0 {
		failed := make(map[string]graph.EdgeKey, len(resp.Failures))
		reasons := make([]string, 0, len(resp.Failures))
		for _, f := range resp.Failures {
			if k, ok := keys[f.ID]; ok {
				failed[f.ID] = k
			}
			reasons = append(reasons, f.Cause.Reason)
		}
		return resp.Deleted, &graph.RemoveNodeError{
			Node:    node,
			Removed: resp.Deleted,
			Failed:  sortedKeys(failed),
			Err:     errors.New(strings.Join(reasons, "; ")),
		}
	}
	return resp.Deleted, nil
}

func (repo *EdgeRepository) FindNeighbors(ctx context.Context, q graph.NeighborQuery) (graph.NeighborPage, error) {
	query, err := neighborsQuery(q)
	if err != nil {
		return graph.NeighborPage{}, err
	}

	hits, err := repo.searchEdges(ctx, query)
	if err != nil {
		return graph.NeighborPage{}, err
	}

	related := make([]graph.RelatedEntity, 0, len(hits))
	for _, h := range hits {
		if rel, ok := q.Match(h.Source.toEdge()); ok {
			related = append(related, rel)
		}
	}
	return graph.NewNeighborPage(related, q.Offset, q.Limit), nil
}

// searchEdges pages through every document matching query using
// search_after on the edge triple.
func (repo *EdgeRepository) searchEdges(ctx context.Context, query elastic.Query) ([]edgeHit, error) {
	var (
		hits  []edgeHit
		after []interface{}
	)
	client := repo.cli.client
	for {
		src := elastic.NewSearchSource().
			Query(query).
			Size(repo.cli.pageSize).
			Sort("source", true).
			Sort("destination", true).
			Sort("relationship_type", true)
		if after != nil {
			src = src.SearchAfter(after...)
		}

		raw, err := src.Source()
		if err != nil {
			return nil, fmt.Errorf("error building search query: %w", err)
		}
		body, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("error serialising search query: %w", err)
		}

		res, err := client.Search(
			client.Search.WithIndex(repo.cli.edgeIndex),
			client.Search.WithBody(bytes.NewReader(body)),
			client.Search.WithContext(ctx),
		)
		if err != nil {
			return nil, elasticSearchError(err)
		}

		page, err := decodeSearchResponse(res)
		res.Body.Close()
		if err != nil {
			return nil, err
		}

		hits = append(hits, page...)
		if len(page) < repo.cli.pageSize {
			return hits, nil
		}
		after = page[len(page)-1].Sort
	}
}

// a missing index holds no edges
func decodeSearchResponse(res *esapi.Response) ([]edgeHit, error) {
	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("error response from elasticsearch: %s", errorReasonFromResponse(res))
	}

	var resp searchResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("error decoding search response: %w", err)
	}
	return resp.Hits.Hits, nil
}

func (repo *EdgeRepository) ensureIndex(ctx context.Context) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.indexReady {
		return nil
	}

	exists, err := repo.cli.indexExists(ctx, repo.cli.edgeIndex)
	if err != nil {
		return err
	}
	if !exists {
		if err := repo.cli.createIdx(ctx); err != nil {
			return err
		}
	}
	repo.indexReady = true
	return nil
}

func neighborsQuery(q graph.NeighborQuery) (elastic.Query, error) {
	bq, err := incidentEdgesQuery(q.Node, q.Filter)
	if err != nil {
		return nil, err
	}

	if len(q.SourceTypes) > 0 {
		bq.Filter(elastic.NewTermsQuery("source_type", stringsToInterfaces(q.SourceTypes)...))
	}
	if len(q.DestinationTypes) > 0 {
		bq.Filter(elastic.NewTermsQuery("destination_type", stringsToInterfaces(q.DestinationTypes)...))
	}
	return bq, nil
}

func incidentEdgesQuery(node graph.URN, filter graph.RelationshipFilter) (*elastic.BoolQuery, error) {
	urn := string(node)

	bq := elastic.NewBoolQuery()
	switch filter.Direction {
	case graph.DirectionOutgoing:
		bq.Filter(elastic.NewTermQuery("source", urn))
	case graph.DirectionIncoming:
		bq.Filter(elastic.NewTermQuery("destination", urn))
	case graph.DirectionUndirected:
		bq.Filter(elastic.NewBoolQuery().
			Should(
				elastic.NewTermQuery("source", urn),
				elastic.NewTermQuery("destination", urn),
			).
			MinimumNumberShouldMatch(1))
	default:
		return nil, graph.InvalidArgumentError{
			Op:  "relationship filter",
			Err: fmt.Errorf("unknown direction %q", filter.Direction),
		}
	}

	if types := filter.ConcreteTypes(); len(types) > 0 {
		values := make([]interface{}, 0, len(types))
		for _, t := range types {
			values = append(values, string(t))
		}
		bq.Filter(elastic.NewTermsQuery("relationship_type", values...))
	}
	return bq, nil
}

// buildQueryBody wraps q as {"query": <q>}.
func buildQueryBody(q elastic.Query) (*bytes.Reader, error) {
	src, err := q.Source()
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	body, err := json.Marshal(map[string]interface{}{"query": src})
	if err != nil {
		return nil, fmt.Errorf("error serialising query: %w", err)
	}
	return bytes.NewReader(body), nil
}

func stringsToInterfaces(ss []string) []interface{} {
	out := make([]interface{}, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}

func sortedKeys(m map[string]graph.EdgeKey) []graph.EdgeKey {
	keys := make([]graph.EdgeKey, 0, len(m))
	for _, k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
