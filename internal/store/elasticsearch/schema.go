package elasticsearch

import "fmt"

// used as body to create the edge index
var indexSettingsTemplate = `{
	"mappings": %s,
	"settings": {
		"number_of_shards": 1,
		"index.max_result_window": 10000
	}
}`

// every field used for filtering is a keyword so that term queries and
// sorting use the exact, case sensitive value
var edgeIndexMapping = `{
	"dynamic": "strict",
	"properties": {
		"source": {
			"type": "keyword"
		},
		"destination": {
			"type": "keyword"
		},
		"relationship_type": {
			"type": "keyword"
		},
		"source_type": {
			"type": "keyword"
		},
		"destination_type": {
			"type": "keyword"
		},
		"properties": {
			"type": "object",
			"enabled": false
		},
		"updated_at": {
			"type": "date"
		}
	}
}`

func buildEdgeIndexSettings() string {
	return fmt.Sprintf(indexSettingsTemplate, edgeIndexMapping)
}
