// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package elastic implements index.Store on Elasticsearch 8, including
// approximate kNN search over the dense vector field.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/index"
	"github.com/poiesic/petindex/schema"
)

// DefaultAddress is the local single-node cluster address.
const DefaultAddress = "http://localhost:9200"

// DefaultRefresh makes bulk writes visible to search before Bulk returns.
const DefaultRefresh = "wait_for"

// Config holds connection settings. APIKey takes precedence over basic auth.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
	// Refresh is passed as the bulk refresh parameter: "true", "false" or "wait_for".
	Refresh string
}

// Store implements index.Store over an Elasticsearch cluster.
type Store struct {
	es      *elasticsearch.Client
	refresh string
	logger  *slog.Logger
}

var _ index.Store = (*Store)(nil)

// NewStore creates an Elasticsearch backed store. No request is made until
// the first call.
//
// Returns index.Store interface to enforce abstraction.
func NewStore(cfg Config) (index.Store, error) {
	if len(cfg.Addresses) == 0 {
		cfg.Addresses = []string{DefaultAddress}
	}
	if cfg.Refresh == "" {
		cfg.Refresh = DefaultRefresh
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConnection, err)
	}

	return &Store{
		es:      es,
		refresh: cfg.Refresh,
		logger:  slog.Default().With("component", "elastic-store", "addresses", strings.Join(cfg.Addresses, ",")),
	}, nil
}

// errorBody is the error envelope Elasticsearch returns on failed requests.
type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// responseError converts a non-2xx response into an error.
func responseError(res *esapi.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(res.Body)
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Type == "" {
		return fmt.Errorf("elasticsearch: %s: %s", res.Status(), bytes.TrimSpace(raw))
	}
	err := fmt.Errorf("elasticsearch: %s: %s", body.Error.Type, body.Error.Reason)
	switch body.Error.Type {
	case "resource_already_exists_exception":
		return fmt.Errorf("%w: %w", index.ErrIndexAlreadyExists, err)
	case "index_not_found_exception":
		return fmt.Errorf("%w: %w", index.ErrIndexNotFound, err)
	}
	return err
}

// Ping checks the cluster is reachable.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res)
	}
	return nil
}

// IndexExists reports whether the named index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := s.es.Indices.Exists([]string{name}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, responseError(res)
}

// CreateIndex creates the named index from m.
func (s *Store) CreateIndex(ctx context.Context, name string, m *schema.IndexMapping) error {
	body, err := MappingBody(m)
	if err != nil {
		return err
	}

	res, err := s.es.Indices.Create(name,
		s.es.Indices.Create.WithBody(bytes.NewReader(body)),
		s.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res)
	}

	s.logger.Info("elasticsearch index created", "index", name)
	return nil
}

// MappingBody renders m as a create-index request body.
func MappingBody(m *schema.IndexMapping) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	props := make(map[string]map[string]any, len(m.Fields))
	for _, f := range m.Fields {
		p := map[string]any{"type": string(f.Type)}
		if f.Type == schema.FieldDenseVector {
			p["dims"] = f.Dims
			p["index"] = f.Indexed
			if f.Similarity != "" {
				p["similarity"] = f.Similarity
			}
		}
		props[f.Name] = p
	}
	return json.Marshal(map[string]any{
		"mappings": map[string]any{"properties": props},
	})
}

type bulkAction struct {
	Index struct {
		Index string `json:"_index"`
		ID    string `json:"_id"`
	} `json:"index"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Bulk upserts docs with index actions keyed by PetID.
func (s *Store) Bulk(ctx context.Context, name string, docs []*core.PetDocument) ([]index.BulkItemResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		var action bulkAction
		action.Index.Index = name
		action.Index.ID = doc.PetID
		if err := enc.Encode(action); err != nil {
			return nil, err
		}
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
	}

	res, err := s.es.Bulk(&buf,
		s.es.Bulk.WithIndex(name),
		s.es.Bulk.WithRefresh(s.refresh),
		s.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError(res)
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding bulk response: %w", err)
	}

	results := make([]index.BulkItemResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		for _, r := range item {
			result := index.BulkItemResult{ID: r.ID}
			if r.Error != nil {
				result.Err = fmt.Errorf("%s: %s", r.Error.Type, r.Error.Reason)
			} else if r.Status >= 300 {
				result.Err = fmt.Errorf("status %d", r.Status)
			}
			results = append(results, result)
		}
	}
	return results, nil
}

// SearchBody renders q as a search request body: a fuzzy multi_match for
// text queries, or a top-level knn clause for vector queries.
func SearchBody(q *index.Query, vectorField string) ([]byte, error) {
	if q.IsVector() {
		if vectorField == "" {
			vectorField = schema.FieldEmbedding
		}
		return json.Marshal(map[string]any{
			"size": q.Size,
			"knn": map[string]any{
				"field":          vectorField,
				"query_vector":   q.Vector,
				"k":              q.Size,
				"num_candidates": max(q.Size*10, 100),
			},
		})
	}

	fields := make([]string, 0, len(q.Fields))
	for _, f := range q.Fields {
		if f.Boost > 0 && f.Boost != 1 {
			fields = append(fields, fmt.Sprintf("%s^%g", f.Name, f.Boost))
		} else {
			fields = append(fields, f.Name)
		}
	}
	mm := map[string]any{"query": q.Text}
	if len(fields) > 0 {
		mm["fields"] = fields
	}
	if q.Fuzzy {
		mm["fuzziness"] = "AUTO"
	}
	return json.Marshal(map[string]any{
		"size":  q.Size,
		"query": map[string]any{"multi_match": mm},
	})
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string           `json:"_id"`
			Score  float64          `json:"_score"`
			Source core.PetDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs q against the named index.
func (s *Store) Search(ctx context.Context, name string, q *index.Query) ([]*core.SearchHit, error) {
	body, err := SearchBody(q, schema.FieldEmbedding)
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithIndex(name),
		s.es.Search.WithBody(bytes.NewReader(body)),
		s.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError(res)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	hits := make([]*core.SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		doc := h.Source
		if doc.PetID == "" {
			doc.PetID = h.ID
		}
		hits = append(hits, &core.SearchHit{Document: &doc, Score: h.Score})
	}
	return hits, nil
}

// Count returns the number of documents in the named index.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	res, err := s.es.Count(
		s.es.Count.WithIndex(name),
		s.es.Count.WithContext(ctx),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, responseError(res)
	}

	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decoding count response: %w", err)
	}
	return parsed.Count, nil
}

// Close is a no-op; the client holds no resources beyond pooled connections.
func (s *Store) Close() error {
	return nil
}
