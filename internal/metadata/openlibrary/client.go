// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package openlibrary implements Open Library as a metadata provider.

It is the fallback of the default chain: no API key, generous limits, and
solid coverage of older and non-English titles where Google Books thins out.
*/
package openlibrary

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/tosho/internal/metadata"
)

const (
	booksURL  = "https://openlibrary.org/api/books"
	searchURL = "https://openlibrary.org/search.json"
	coversURL = "https://covers.openlibrary.org/b/id/%d-L.jpg"
)

// Client queries the Open Library APIs.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates an Open Library provider.
// Open Library asks bulk users to stay under ~1 req/sec.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Second), 2),
		logger:      logger,
	}
}

// Name identifies the provider in logs.
func (client *Client) Name() string { return "open-library" }

// # Wire Types

type editionResponse map[string]edition

type edition struct {
	Title         string       `json:"title"`
	Subtitle      string       `json:"subtitle"`
	Authors       []namedLink  `json:"authors"`
	Publishers    []namedLink  `json:"publishers"`
	PublishDate   string       `json:"publish_date"`
	NumberOfPages int          `json:"number_of_pages"`
	Subjects      []namedLink  `json:"subjects"`
	Cover         editionCover `json:"cover"`
}

type namedLink struct {
	Name string `json:"name"`
}

type editionCover struct {
	Large string `json:"large"`
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	Publisher        []string `json:"publisher"`
	FirstPublishYear int      `json:"first_publish_year"`
	NumberOfPages    int      `json:"number_of_pages_median"`
	Subject          []string `json:"subject"`
	Language         []string `json:"language"`
	CoverID          int      `json:"cover_i"`
	ISBN             []string `json:"isbn"`
}

// # Lookups

// LookupByID resolves one ISBN via the books API.
func (client *Client) LookupByID(ctx context.Context, identifier string) (*metadata.Record, error) {
	values := url.Values{}
	values.Set("bibkeys", "ISBN:"+identifier)
	values.Set("format", "json")
	values.Set("jscmd", "data")

	var response editionResponse
	if err := metadata.HTTPJSON(ctx, client.httpClient, client.rateLimiter,
		booksURL+"?"+values.Encode(), &response); err != nil {
		return nil, err
	}

	hit, found := response["ISBN:"+identifier]
	if !found {
		return nil, nil
	}

	return normalizeEdition(hit, identifier), nil
}

// LookupByTitle searches by title and optional author.
func (client *Client) LookupByTitle(ctx context.Context, title, author string) ([]*metadata.Record, error) {
	values := url.Values{}
	values.Set("title", title)
	if author != "" {
		values.Set("author", author)
	}
	values.Set("limit", "5")

	var response searchResponse
	if err := metadata.HTTPJSON(ctx, client.httpClient, client.rateLimiter,
		searchURL+"?"+values.Encode(), &response); err != nil {
		return nil, err
	}

	records := make([]*metadata.Record, 0, len(response.Docs))
	for _, doc := range response.Docs {
		records = append(records, normalizeDoc(doc))
	}
	return records, nil
}

// # Normalization

func normalizeEdition(hit edition, identifier string) *metadata.Record {
	record := &metadata.Record{
		Title:         hit.Title,
		Subtitle:      hit.Subtitle,
		PublishedDate: hit.PublishDate,
		PageCount:     hit.NumberOfPages,
		CoverURL:      hit.Cover.Large,
	}

	for _, entry := range hit.Authors {
		record.Authors = append(record.Authors, entry.Name)
	}
	if len(hit.Publishers) > 0 {
		record.Publisher = hit.Publishers[0].Name
	}
	for _, subject := range hit.Subjects {
		record.Categories = append(record.Categories, subject.Name)
	}

	switch len(identifier) {
	case 10:
		record.Identifiers.ISBN10 = identifier
	case 13:
		record.Identifiers.ISBN13 = identifier
	}

	return record
}

func normalizeDoc(doc searchDoc) *metadata.Record {
	record := &metadata.Record{
		Title:      doc.Title,
		Authors:    doc.AuthorName,
		PageCount:  doc.NumberOfPages,
		Categories: doc.Subject,
	}

	if len(doc.Publisher) > 0 {
		record.Publisher = doc.Publisher[0]
	}
	if doc.FirstPublishYear > 0 {
		record.PublishedDate = fmt.Sprint(doc.FirstPublishYear)
	}
	if len(doc.Language) > 0 {
		record.Language = doc.Language[0]
	}
	if doc.CoverID > 0 {
		record.CoverURL = fmt.Sprintf(coversURL, doc.CoverID)
	}

	for _, isbn := range doc.ISBN {
		cleaned := strings.TrimSpace(isbn)
		switch {
		case len(cleaned) == 10 && record.Identifiers.ISBN10 == "":
			record.Identifiers.ISBN10 = cleaned
		case len(cleaned) == 13 && record.Identifiers.ISBN13 == "":
			record.Identifiers.ISBN13 = cleaned
		}
	}

	return record
}
