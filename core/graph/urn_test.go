package graph_test

import (
	"testing"

	"github.com/goto/lineage/core/graph"
	"github.com/stretchr/testify/assert"
)

func TestURN_EntityType(t *testing.T) {
	cases := []struct {
		urn      graph.URN
		expected string
	}{
		{urn: "urn:bigquery:table:project.dataset.table", expected: "table"},
		{urn: "urn:optimus:job:a:b:c", expected: "job"},
		{urn: "urn:li:dataset:", expected: "dataset"},
		{urn: "urn:bigquery:table", expected: ""},
		{urn: "URN:bigquery:table:x", expected: ""},
		{urn: "some-id", expected: ""},
		{urn: "", expected: ""},
	}
	for _, tc := range cases {
		t.Run(string(tc.urn), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.urn.EntityType())
		})
	}
}
