package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/ashwinyue/tool-catalog/internal/config"
)

// ES8Indexer 基于 Elasticsearch 8 的索引
type ES8Indexer struct {
	client *elasticsearch.Client
	index  string
}

// NewES8Client 创建 ES8 客户端
func NewES8Client(cfg *config.ElasticConfig) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Host},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
}

// NewES8Indexer 创建索引器
func NewES8Indexer(client *elasticsearch.Client, indexPrefix string) *ES8Indexer {
	return &ES8Indexer{client: client, index: indexPrefix + "_tools"}
}

func (i *ES8Indexer) Enabled() bool { return true }

// EnsureIndex 确保 ES 索引存在（如不存在则创建）
func (i *ES8Indexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	keyword := map[string]interface{}{"type": "keyword"}
	text := map[string]interface{}{"type": "text"}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":          keyword,
				"name":        text,
				"description": text,
				"category":    keyword,
				"tags":        keyword,
				"chains":      keyword,
				"protocols":   keyword,
				"grade":       keyword,
				"total_score": map[string]interface{}{"type": "integer"},
			},
		},
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	req := esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  bytes.NewReader(body),
	}
	res, err = req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}
	return nil
}

// Index 写入或覆盖文档
func (i *ES8Indexer) Index(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := i.client.Index(i.index, bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(doc.ID),
		i.client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("failed to index tool %s: %w", doc.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index tool %s: %s", doc.ID, res.String())
	}
	return nil
}

// Delete 删除文档，文档不存在不算错误
func (i *ES8Indexer) Delete(ctx context.Context, id string) error {
	res, err := i.client.Delete(i.index, id, i.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete tool %s from index: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to delete tool %s from index: %s", id, res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search 检索工具
func (i *ES8Indexer) Search(ctx context.Context, q Query) ([]string, int64, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, parsed.Hits.Total.Value, nil
}

// buildQuery 组装 bool 查询：文本进 must，其余条件进 filter
func buildQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"name^3", "description", "tags^2"},
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	filter := []interface{}{}
	terms := []struct{ field, value string }{
		{"category", q.Category},
		{"chains", strings.ToLower(q.Chain)},
		{"protocols", strings.ToLower(q.Protocol)},
		{"tags", strings.ToLower(q.Tag)},
		{"grade", strings.ToLower(q.Grade)},
	}
	for _, t := range terms {
		if t.value != "" {
			filter = append(filter, map[string]interface{}{
				"term": map[string]interface{}{t.field: t.value},
			})
		}
	}
	if q.MinScore > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"total_score": map[string]interface{}{"gte": q.MinScore}},
		})
	}

	size := q.Size
	if size <= 0 {
		size = 20
	}

	return map[string]interface{}{
		"from": q.From,
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"total_score": "desc"},
			map[string]interface{}{"id": "asc"},
		},
	}
}
