package schema

// CatalogAuthorTable represents the 'catalog.author' table
type CatalogAuthorTable struct {
	Table       string
	ID          string
	Name        string
	Biography   string
	BirthDate   string
	DeathDate   string
	Nationality string
	Website     string
	Aliases     string
	Genres      string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogAuthor is the schema definition for catalog.author
var CatalogAuthor = CatalogAuthorTable{
	Table:       "catalog.author",
	ID:          "id",
	Name:        "name",
	Biography:   "biography",
	BirthDate:   "birthdate",
	DeathDate:   "deathdate",
	Nationality: "nationality",
	Website:     "website",
	Aliases:     "aliases",
	Genres:      "genres",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t CatalogAuthorTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Biography, t.BirthDate, t.DeathDate,
		t.Nationality, t.Website, t.Aliases, t.Genres, t.CreatedAt, t.UpdatedAt,
	}
}
