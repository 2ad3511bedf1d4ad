package config

const (
	// DefaultDatabasePath is the default path for the sqlite document store
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultCatalogBaseURL is the Google Books API root used for catalog search
	DefaultCatalogBaseURL = "https://www.googleapis.com/books/v1"
)
