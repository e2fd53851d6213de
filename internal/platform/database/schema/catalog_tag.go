package schema

// CatalogTagTable represents the 'catalog.tag' table
type CatalogTagTable struct {
	Table              string
	ID                 string
	Name               string
	Slug               string
	Category           string
	Description        string
	Color              string
	RequiresPermission string
	CreatedAt          string
}

// CatalogTag is the schema definition for catalog.tag
var CatalogTag = CatalogTagTable{
	Table:              "catalog.tag",
	ID:                 "id",
	Name:               "name",
	Slug:               "slug",
	Category:           "category",
	Description:        "description",
	Color:              "color",
	RequiresPermission: "requirespermission",
	CreatedAt:          "createdat",
}

// CatalogBookTagTable represents the 'catalog.booktag' join table
type CatalogBookTagTable struct {
	Table       string
	BookID      string
	TagID       string
	AppliedAt   string
	AppliedBy   string
	AutoApplied string
}

// CatalogBookTag is the schema definition for catalog.booktag
var CatalogBookTag = CatalogBookTagTable{
	Table:       "catalog.booktag",
	BookID:      "bookid",
	TagID:       "tagid",
	AppliedAt:   "appliedat",
	AppliedBy:   "appliedby",
	AutoApplied: "autoapplied",
}
