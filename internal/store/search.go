package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"college-recommender/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrSearchFailed  = errors.New("search query failed")
)

const collegeMapping = `{
	"mappings": {
		"properties": {
			"id":       {"type": "keyword"},
			"name":     {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"code":     {"type": "keyword"},
			"city":     {"type": "keyword"},
			"district": {"type": "keyword"},
			"type":     {"type": "keyword"}
		}
	}
}`

// CollegeIndex is the Elasticsearch side of quick search.
type CollegeIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewCollegeIndex(client *elasticsearch.Client, index string) *CollegeIndex {
	return &CollegeIndex{client: client, index: index}
}

func (i *CollegeIndex) Name() string {
	return i.index
}

// EnsureIndex creates the index with the college mapping if it is missing.
func (i *CollegeIndex) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.index, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.client.Indices.Create(
		i.index,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(strings.NewReader(collegeMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.index, res.String())
	}
	return nil
}

// Search matches q anywhere in name, city or code, ignoring case.
func (i *CollegeIndex) Search(ctx context.Context, q string, limit int) ([]models.CollegeDocument, error) {
	pattern := "*" + escapeWildcard(q) + "*"
	wildcard := func(field string) map[string]interface{} {
		return map[string]interface{}{
			"wildcard": map[string]interface{}{
				field: map[string]interface{}{"value": pattern, "case_insensitive": true},
			},
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               []interface{}{wildcard("name.keyword"), wildcard("city"), wildcard("code")},
				"minimum_should_match": 1,
			},
		},
		"sort": []interface{}{"_score", map[string]interface{}{"name.keyword": "asc"}},
	})
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
		Size:  &limit,
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, i.index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.CollegeDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	docs := make([]models.CollegeDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

type BulkResult struct {
	Indexed int
	Failed  int
	Errors  []string
}

// BulkIndex writes the documents keyed by college id, replacing any existing
// document with the same id.
func (i *CollegeIndex) BulkIndex(ctx context.Context, docs []models.CollegeDocument) (*BulkResult, error) {
	result := &BulkResult{}
	if len(docs) == 0 {
		return result, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": i.index, "_id": doc.ID}}
		if err := enc.Encode(meta); err != nil {
			return nil, err
		}
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
	}

	res, err := i.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		i.client.Bulk.WithContext(ctx),
		i.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return nil, fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("bulk index: %s", res.String())
	}

	var parsed struct {
		Items []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}

	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Error != nil || op.Status >= 300 {
				result.Failed++
				if op.Error != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", op.ID, op.Error.Reason))
				}
				continue
			}
			result.Indexed++
		}
	}
	return result, nil
}

func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}
