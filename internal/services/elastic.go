package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"buysell_back_end/internal/database"
	"buysell_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const itemsIndex = "items"

//
// --- ELASTICSEARCH INDEXING ---
//

// IndexItem pushes an item into the Elasticsearch items index. Called in
// a goroutine from the create path, failures only get logged.
func IndexItem(item models.Item) {
	if database.Elastic == nil {
		log.Println("⚠️ Elastic not initialised, skipping indexation of:", item.Name)
		return
	}

	data, _ := json.Marshal(item)
	req := esapi.IndexRequest{
		Index:      itemsIndex,
		DocumentID: item.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Elastic index request failed:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic returned an error for %s: %s", item.Name, res.String())
	} else {
		log.Printf("✅ Item indexed in Elasticsearch: %s", item.Name)
	}
}

//
// --- ELASTICSEARCH SEARCH ---
//

// ItemSearchFilter mirrors the search-filter request body.
type ItemSearchFilter struct {
	Query      string   `json:"query"`
	Categories []string `json:"categories"`
	MinPrice   *float64 `json:"minPrice"`
	MaxPrice   *float64 `json:"maxPrice"`
}

// SearchItems runs a bool query over the items index: text match on
// name/description, category terms filter, price range filter.
func SearchItems(ctx context.Context, filter ItemSearchFilter) ([]models.Item, error) {
	if database.Elastic == nil {
		return nil, errors.New("elasticsearch client not initialised")
	}

	boolQuery := map[string]interface{}{}

	if filter.Query != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  filter.Query,
					"fields": []string{"name", "description"},
				},
			},
		}
	}

	var filters []interface{}
	if len(filter.Categories) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"category": filter.Categories},
		})
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		priceRange := map[string]interface{}{}
		if filter.MinPrice != nil {
			priceRange["gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			priceRange["lte"] = *filter.MaxPrice
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"price": priceRange},
		})
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"size":  100,
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("query encoding failed: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{itemsIndex},
		Body:  &buf,
	}
	res, err := req.Do(ctx, database.Elastic)
	if err != nil {
		return nil, fmt.Errorf("elastic request failed: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		json.NewDecoder(res.Body).Decode(&e)
		log.Printf("❌ Elasticsearch error: %+v", e)
		return nil, errors.New("index missing or empty")
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Item `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("response decoding failed: %v", err)
	}

	items := make([]models.Item, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		items = append(items, hit.Source)
	}

	return items, nil
}
