// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "github.com/taibuivan/tosho/internal/users/perm"

// # Seed Catalog

// seedTag describes one canonical tag created at startup.
type seedTag struct {
	Name               string
	Category           Category
	Description        string
	RequiresPermission string // empty means ungated
}

// defaultTags is the canonical catalog. Seeding is idempotent; installs may
// add their own tags on top but these names are stable.
var defaultTags = []seedTag{
	// Content ratings. NSFW/Adult/Restricted gate visibility.
	{Name: "Everyone", Category: CategoryContentRating},
	{Name: "Teen", Category: CategoryContentRating},
	{Name: "Mature", Category: CategoryContentRating},
	{Name: "NSFW", Category: CategoryContentRating, RequiresPermission: perm.PermContentNSFW},
	{Name: "Adult", Category: CategoryContentRating, RequiresPermission: perm.PermContentNSFW},
	{Name: "Restricted", Category: CategoryContentRating, RequiresPermission: perm.PermContentRestricted},

	// File formats, applied from the extension.
	{Name: "PDF", Category: CategoryFormat},
	{Name: "EPUB", Category: CategoryFormat},
	{Name: "MOBI", Category: CategoryFormat},
	{Name: "AZW3", Category: CategoryFormat},
	{Name: "CBR", Category: CategoryFormat},
	{Name: "CBZ", Category: CategoryFormat},

	// Genres, targeted by the category→genre aliases below.
	{Name: "Fiction", Category: CategoryGenre},
	{Name: "Non-Fiction", Category: CategoryGenre},
	{Name: "Science Fiction", Category: CategoryGenre},
	{Name: "Fantasy", Category: CategoryGenre},
	{Name: "Mystery", Category: CategoryGenre},
	{Name: "Romance", Category: CategoryGenre},
	{Name: "Horror", Category: CategoryGenre},
	{Name: "Biography", Category: CategoryGenre},
	{Name: "History", Category: CategoryGenre},
	{Name: "Programming", Category: CategoryGenre},
	{Name: "Technology", Category: CategoryGenre},
	{Name: "Science", Category: CategoryGenre},
	{Name: "Self-Help", Category: CategoryGenre},
	{Name: "Business", Category: CategoryGenre},
	{Name: "Children", Category: CategoryGenre},
	{Name: "Comics & Graphic Novels", Category: CategoryGenre},
	{Name: "Poetry", Category: CategoryGenre},
	{Name: "Travel", Category: CategoryGenre},
	{Name: "Cooking", Category: CategoryGenre},
	{Name: "Art", Category: CategoryGenre},

	// Status markers maintained by curators.
	{Name: "New Arrival", Category: CategoryStatus},
	{Name: "Featured", Category: CategoryStatus},
}

// # Category → Genre Aliases

// genreAliases maps provider category strings to genre tag names. Matching is
// case-insensitive; a key either equals the category or appears as a
// substring of it ("Computers / Programming" hits "computers").
//
// A category may fan out to several genres.
var genreAliases = map[string][]string{
	"fiction":                 {"Fiction"},
	"literature":              {"Fiction"},
	"nonfiction":              {"Non-Fiction"},
	"non-fiction":             {"Non-Fiction"},
	"science fiction":         {"Science Fiction"},
	"sci-fi":                  {"Science Fiction"},
	"fantasy":                 {"Fantasy"},
	"mystery":                 {"Mystery"},
	"thriller":                {"Mystery"},
	"crime":                   {"Mystery"},
	"romance":                 {"Romance"},
	"horror":                  {"Horror"},
	"biography":               {"Biography"},
	"autobiography":           {"Biography"},
	"memoir":                  {"Biography"},
	"history":                 {"History"},
	"computers":               {"Programming", "Technology"},
	"programming":             {"Programming"},
	"software":                {"Programming"},
	"technology":              {"Technology"},
	"engineering":             {"Technology"},
	"science":                 {"Science"},
	"mathematics":             {"Science"},
	"self-help":               {"Self-Help"},
	"psychology":              {"Self-Help"},
	"business":                {"Business"},
	"economics":               {"Business"},
	"juvenile":                {"Children"},
	"children":                {"Children"},
	"comics":                  {"Comics & Graphic Novels"},
	"graphic novels":          {"Comics & Graphic Novels"},
	"manga":                   {"Comics & Graphic Novels"},
	"poetry":                  {"Poetry"},
	"travel":                  {"Travel"},
	"cooking":                 {"Cooking"},
	"food":                    {"Cooking"},
	"art":                     {"Art"},
	"photography":             {"Art"},
	"design":                  {"Art"},
}

// maturityRatings maps a provider's normalized maturity value to a
// content-rating tag name.
var maturityRatings = map[string]string{
	"NOT_MATURE": "Everyone",
	"MATURE":     "Mature",
	"ADULT":      "Adult",
}

// formatTags maps a detected file format to its format tag name.
var formatTags = map[string]string{
	"pdf":  "PDF",
	"epub": "EPUB",
	"mobi": "MOBI",
	"azw3": "AZW3",
	"cbr":  "CBR",
	"cbz":  "CBZ",
}
