package schema

// LibraryReadingProgressTable represents the 'library.readingprogress' table
type LibraryReadingProgressTable struct {
	Table           string
	UserID          string
	BookID          string
	CurrentPage     string
	TotalPages      string
	PercentComplete string
	LastReadAt      string
	Location        string
	CreatedAt       string
	UpdatedAt       string
}

// LibraryReadingProgress is the schema definition for library.readingprogress
var LibraryReadingProgress = LibraryReadingProgressTable{
	Table:           "library.readingprogress",
	UserID:          "userid",
	BookID:          "bookid",
	CurrentPage:     "currentpage",
	TotalPages:      "totalpages",
	PercentComplete: "percentcomplete",
	LastReadAt:      "lastreadat",
	Location:        "location",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}
