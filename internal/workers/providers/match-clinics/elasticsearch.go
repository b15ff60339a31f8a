// internal/workers/providers/match-clinics/elasticsearch.go
package matchclinics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"dental-claims/internal/models"
)

var ErrMissingIndex = errors.New("index name is required")

// ElasticsearchCatalog reads clinics from a search index with keyword
// fields accepted_plans and specialties and a numeric catalog_order.
type ElasticsearchCatalog struct {
	client *elasticsearch.Client
	index  string
	size   int
}

func NewElasticsearchCatalog(client *elasticsearch.Client, index string, size int) *ElasticsearchCatalog {
	if size <= 0 {
		size = 50
	}
	return &ElasticsearchCatalog{client: client, index: index, size: size}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.ClinicRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *ElasticsearchCatalog) Query(ctx context.Context, tier models.PlanTier, specialty string) ([]models.ClinicRecord, error) {
	if c.index == "" {
		return nil, ErrMissingIndex
	}

	body, err := json.Marshal(buildClinicQuery(tier, specialty))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	size := c.size
	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	clinics := make([]models.ClinicRecord, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		clinics = append(clinics, hit.Source)
	}
	return clinics, nil
}

func buildClinicQuery(tier models.PlanTier, specialty string) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"accepted_plans": string(tier)},
		},
	}
	if specialty != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"specialties": specialty},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort": []interface{}{
			map[string]interface{}{"catalog_order": map[string]interface{}{"order": "asc"}},
		},
	}
}
