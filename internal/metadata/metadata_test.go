// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metadata_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/metadata"
)

// # Fakes

// fakeProvider returns canned records or a canned failure.
type fakeProvider struct {
	name    string
	byID    *metadata.Record
	byTitle []*metadata.Record
	err     error
	calls   int
}

func (provider *fakeProvider) Name() string { return provider.name }

func (provider *fakeProvider) LookupByID(_ context.Context, _ string) (*metadata.Record, error) {
	provider.calls++
	return provider.byID, provider.err
}

func (provider *fakeProvider) LookupByTitle(_ context.Context, _, _ string) ([]*metadata.Record, error) {
	provider.calls++
	return provider.byTitle, provider.err
}

// # Fusion

/*
TestFuse pins the primary-wins, fallback-fills-gaps rule.
*/
func TestFuse(t *testing.T) {
	primary := &metadata.Record{
		Title:     "Learn C Programming",
		Authors:   []string{"Jeff Szuhay"},
		Publisher: "Packt",
	}
	fallback := &metadata.Record{
		Title:         "Learn C Programming (2nd)",
		Publisher:     "Someone Else",
		PageCount:     742,
		Categories:    []string{"Computers"},
		PublishedDate: "2020-06-26",
	}

	fused := metadata.Fuse(primary, fallback)

	// Primary fields survive untouched.
	assert.Equal(t, "Learn C Programming", fused.Title)
	assert.Equal(t, "Packt", fused.Publisher)
	assert.Equal(t, []string{"Jeff Szuhay"}, fused.Authors)

	// Gaps fill from the fallback.
	assert.Equal(t, 742, fused.PageCount)
	assert.Equal(t, []string{"Computers"}, fused.Categories)
	assert.Equal(t, "2020-06-26", fused.PublishedDate)
}

/*
TestFuse_NilSides covers the accumulator bootstrap.
*/
func TestFuse_NilSides(t *testing.T) {
	record := &metadata.Record{Title: "X"}

	assert.Equal(t, "X", metadata.Fuse(nil, record).Title)
	assert.Equal(t, "X", metadata.Fuse(record, nil).Title)
}

// # Resolver

/*
TestResolver_Disabled checks the opt-in contract: a disabled resolver
answers empty without touching any provider.
*/
func TestResolver_Disabled(t *testing.T) {
	provider := &fakeProvider{name: "p1", byID: &metadata.Record{Title: "X"}}
	resolver := metadata.NewResolver(false, slog.Default(), provider)

	assert.Nil(t, resolver.LookupByID(context.Background(), "9781789349917"))
	assert.Nil(t, resolver.LookupByTitle(context.Background(), "X", ""))
	assert.Zero(t, provider.calls)
}

/*
TestResolver_ProviderOrder checks that the first provider is authoritative
and later ones only fill gaps.
*/
func TestResolver_ProviderOrder(t *testing.T) {
	first := &fakeProvider{name: "google-books", byID: &metadata.Record{
		Title:     "Learn C Programming",
		Authors:   []string{"Jeff Szuhay"},
		Publisher: "Packt",
	}}
	second := &fakeProvider{name: "open-library", byID: &metadata.Record{
		Title:     "Different Title",
		PageCount: 742,
	}}

	resolver := metadata.NewResolver(true, slog.Default(), first, second)

	record := resolver.LookupByID(context.Background(), "9781789349917")
	require.NotNil(t, record)

	assert.Equal(t, "Learn C Programming", record.Title)
	assert.Equal(t, "Packt", record.Publisher)
	assert.Equal(t, 742, record.PageCount)
}

/*
TestResolver_ProviderFailureDegrades checks that a failing provider is
treated as "no result" and never propagates an error.
*/
func TestResolver_ProviderFailureDegrades(t *testing.T) {
	failing := &fakeProvider{name: "google-books", err: errors.New("upstream 503")}
	healthy := &fakeProvider{name: "open-library", byID: &metadata.Record{Title: "Fallback Hit"}}

	resolver := metadata.NewResolver(true, slog.Default(), failing, healthy)

	record := resolver.LookupByID(context.Background(), "9781789349917")
	require.NotNil(t, record)
	assert.Equal(t, "Fallback Hit", record.Title)
}

/*
TestResolver_AllFail checks that total upstream failure yields nil, not an
error.
*/
func TestResolver_AllFail(t *testing.T) {
	failing := &fakeProvider{name: "p1", err: errors.New("down")}
	resolver := metadata.NewResolver(true, slog.Default(), failing)

	assert.Nil(t, resolver.LookupByID(context.Background(), "9781789349917"))
}

/*
TestResolver_TitleExactMatchPreferred checks best-hit selection within one
provider's search results.
*/
func TestResolver_TitleExactMatchPreferred(t *testing.T) {
	provider := &fakeProvider{name: "p1", byTitle: []*metadata.Record{
		{Title: "The Dispossessed: An Ambiguous Utopia"},
		{Title: "The Dispossessed"},
	}}

	resolver := metadata.NewResolver(true, slog.Default(), provider)

	record := resolver.LookupByTitle(context.Background(), "the dispossessed", "")
	require.NotNil(t, record)
	assert.Equal(t, "The Dispossessed", record.Title)
}
