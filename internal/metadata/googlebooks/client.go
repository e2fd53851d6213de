// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package googlebooks implements the Google Books volumes API as a metadata
provider.

It is the primary provider of the default chain: richest category data and
the only source of maturity ratings. An API key is optional; keyless calls
share a tighter quota.
*/
package googlebooks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/tosho/internal/metadata"
)

const baseURL = "https://www.googleapis.com/books/v1/volumes"

// Client queries the Google Books volumes API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	apiKey      string
	logger      *slog.Logger
}

// NewClient creates a Google Books provider.
// Limited to 1 request/second with a small burst; the public quota is 1000
// calls/day keyless and this keeps long scans inside it.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Second), 3),
		apiKey:      apiKey,
		logger:      logger,
	}
}

// Name identifies the provider in logs.
func (client *Client) Name() string { return "google-books" }

// # Wire Types

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	Authors             []string `json:"authors"`
	Publisher           string   `json:"publisher"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	PageCount           int      `json:"pageCount"`
	Categories          []string `json:"categories"`
	Language            string   `json:"language"`
	AverageRating       float64  `json:"averageRating"`
	MaturityRating      string   `json:"maturityRating"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// # Lookups

// LookupByID resolves one ISBN via the isbn: query operator.
func (client *Client) LookupByID(ctx context.Context, identifier string) (*metadata.Record, error) {
	records, err := client.search(ctx, "isbn:"+identifier, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// LookupByTitle searches by title and optional author.
func (client *Client) LookupByTitle(ctx context.Context, title, author string) ([]*metadata.Record, error) {
	query := fmt.Sprintf("intitle:%q", title)
	if author != "" {
		query += fmt.Sprintf("+inauthor:%q", author)
	}
	return client.search(ctx, query, 5)
}

// search runs one volumes query and normalizes the hits.
func (client *Client) search(ctx context.Context, query string, limit int) ([]*metadata.Record, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("maxResults", fmt.Sprint(limit))
	if client.apiKey != "" {
		values.Set("key", client.apiKey)
	}

	var response volumesResponse
	if err := metadata.HTTPJSON(ctx, client.httpClient, client.rateLimiter,
		baseURL+"?"+values.Encode(), &response); err != nil {
		return nil, err
	}

	records := make([]*metadata.Record, 0, len(response.Items))
	for _, item := range response.Items {
		records = append(records, normalize(item.VolumeInfo))
	}
	return records, nil
}

// normalize maps the wire shape onto the provider-agnostic record.
func normalize(info volumeInfo) *metadata.Record {
	record := &metadata.Record{
		Title:          info.Title,
		Subtitle:       info.Subtitle,
		Authors:        info.Authors,
		Publisher:      info.Publisher,
		PublishedDate:  info.PublishedDate,
		Description:    info.Description,
		PageCount:      info.PageCount,
		Categories:     info.Categories,
		Language:       info.Language,
		AverageRating:  info.AverageRating,
		MaturityRating: info.MaturityRating,
		CoverURL:       info.ImageLinks.Thumbnail,
	}

	for _, identifier := range info.IndustryIdentifiers {
		switch identifier.Type {
		case "ISBN_10":
			record.Identifiers.ISBN10 = identifier.Identifier
		case "ISBN_13":
			record.Identifiers.ISBN13 = identifier.Identifier
		}
	}

	return record
}
