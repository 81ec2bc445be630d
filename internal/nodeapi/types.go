package nodeapi

import (
	"github.com/plexsphere/hwcountd/internal/catalog"
)

// ChildrenResponse is the response for GET /v1/metrics.
type ChildrenResponse struct {
	Prefix   string          `json:"prefix"`
	Children []catalog.Child `json:"children"`
}

// MetricInfo is the response for GET /v1/metrics/{name}.
type MetricInfo struct {
	Name       string             `json:"name"`
	ID         catalog.ID         `json:"id"`
	Descriptor catalog.Descriptor `json:"descriptor"`
	OneLine    string             `json:"oneline,omitempty"`
}

// TextResponse is the response for GET /v1/text/{id}.
type TextResponse struct {
	ID   catalog.ID `json:"id"`
	Kind string     `json:"kind"`
	Text string     `json:"text"`
}

// FetchRequest is the body of POST /v1/fetch. IDs and names may be mixed;
// results follow IDs first, then names, each in request order.
type FetchRequest struct {
	IDs   []catalog.ID `json:"ids,omitempty"`
	Names []string     `json:"names,omitempty"`
}

// FetchResponse is the response for POST /v1/fetch.
type FetchResponse struct {
	Results []FetchResult `json:"results"`
}

// FetchResult is one fetched metric. Value is a number for u64 and u32
// metrics and a string for string metrics; it is absent when Error is set.
type FetchResult struct {
	ID    catalog.ID   `json:"id"`
	Name  string       `json:"name,omitempty"`
	Type  catalog.Type `json:"type,omitempty"`
	Value any          `json:"value,omitempty"`
	Error string       `json:"error,omitempty"`
}

// StoreRequest is the body of POST /v1/store.
type StoreRequest struct {
	Values []StoreItem `json:"values"`
}

// StoreItem addresses a control by id or by name.
type StoreItem struct {
	ID    *catalog.ID `json:"id,omitempty"`
	Name  string      `json:"name,omitempty"`
	Value string      `json:"value"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
