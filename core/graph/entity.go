package graph

import "time"

// Entity is the metadata record of a node. The graph only relies on its
// existence; attributes are carried for callers.
type Entity struct {
	URN        URN                    `json:"urn" validate:"required"`
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}
