package memory

import (
	"context"
	"fmt"
	"os"

	"github.com/goto/lineage/core/graph"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// EdgesFile is an optional YAML file of edges loaded on start.
	EdgesFile string `mapstructure:"edges_file" yaml:"edges_file"`
}

type edgeRecord struct {
	Source      string                 `yaml:"source"`
	Destination string                 `yaml:"destination"`
	Type        string                 `yaml:"type"`
	Properties  map[string]interface{} `yaml:"properties"`
}

// NewEdgeStoreFromConfig creates a store and seeds it with the edges of
// cfg.EdgesFile when set.
func NewEdgeStoreFromConfig(ctx context.Context, cfg Config) (*EdgeStore, error) {
	s := NewEdgeStore()
	if cfg.EdgesFile == "" {
		return s, nil
	}

	if err := s.LoadFile(ctx, cfg.EdgesFile); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile upserts the edges listed in a YAML file.
func (s *EdgeStore) LoadFile(ctx context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read edges file: %w", err)
	}

	var records []edgeRecord
	if err := yaml.Unmarshal(b, &records); err != nil {
		return fmt.Errorf("parse edges file %q: %w", path, err)
	}

	for i, r := range records {
		if r.Source == "" || r.Destination == "" || r.Type == "" {
			return fmt.Errorf("parse edges file %q: edge %d: source, destination and type are required", path, i)
		}

		if err := s.UpsertEdge(ctx, graph.Edge{
			Source:      graph.URN(r.Source),
			Destination: graph.URN(r.Destination),
			Type:        graph.RelationshipType(r.Type),
			Properties:  normalizeYAML(r.Properties),
		}); err != nil {
			return err
		}
	}
	return nil
}

// normalizeYAML converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]interface{} so properties can be encoded as JSON.
func normalizeYAML(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return nil
	}
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeValue(val)
		}
		return m
	case []interface{}:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	default:
		return v
	}
}
