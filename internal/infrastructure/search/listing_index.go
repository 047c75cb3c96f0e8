// Package search indexes public listing fields in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
)

type listingDoc struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id,omitempty"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ListingIndex stores only the public part of a listing; contact details and
// brochure objects never leave the database.
type ListingIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewListingIndex(es *elasticsearch.Client, index string) *ListingIndex {
	return &ListingIndex{es: es, index: index}
}

func (x *ListingIndex) Index(ctx context.Context, l entity.Listing) error {
	l = l.Public()
	b, err := json.Marshal(listingDoc{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Category:    string(l.Category),
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Price:       l.Price,
		ImageURL:    l.ImageURL,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: l.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", l.ID, res.Status())
	}
	return nil
}

// Delete treats a missing document as already deleted.
func (x *ListingIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	res, err := req.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over title, location and description.
func (x *ListingIndex) Search(ctx context.Context, q string, size int) ([]entity.Listing, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "location^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source listingDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Listing, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		l := entity.Listing{
			ID:          d.ID,
			OwnerID:     d.OwnerID,
			Category:    entity.Category(d.Category),
			Title:       d.Title,
			Description: d.Description,
			Location:    d.Location,
			Price:       d.Price,
			ImageURL:    d.ImageURL,
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339Nano, d.CreatedAt)
		l.UpdatedAt, _ = time.Parse(time.RFC3339Nano, d.UpdatedAt)
		out = append(out, l)
	}
	return out, nil
}
