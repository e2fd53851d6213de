package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table           string
	ID              string
	Name            string
	Filepath        string
	AuthorID        string
	ISBN            string
	PublicationDate string
	Publisher       string
	Description     string
	PageCount       string
	FileSize        string
	FileFormat      string
	CoverPath       string
	Status          string
	ArchivedAt      string
	ArchiveReason   string
	CreatedAt       string
	UpdatedAt       string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:           "catalog.book",
	ID:              "id",
	Name:            "name",
	Filepath:        "filepath",
	AuthorID:        "authorid",
	ISBN:            "isbn",
	PublicationDate: "publicationdate",
	Publisher:       "publisher",
	Description:     "description",
	PageCount:       "pagecount",
	FileSize:        "filesize",
	FileFormat:      "fileformat",
	CoverPath:       "coverpath",
	Status:          "status",
	ArchivedAt:      "archivedat",
	ArchiveReason:   "archivereason",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t CatalogBookTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Filepath, t.AuthorID, t.ISBN, t.PublicationDate,
		t.Publisher, t.Description, t.PageCount, t.FileSize, t.FileFormat,
		t.CoverPath, t.Status, t.ArchivedAt, t.ArchiveReason, t.CreatedAt, t.UpdatedAt,
	}
}
