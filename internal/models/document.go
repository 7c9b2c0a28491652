package models

// DocumentInput is a source document as supplied by a client.
type DocumentInput struct {
	Name     string `json:"name" bson:"name"`
	Language string `json:"language" bson:"language"`
	Content  string `json:"content" bson:"content"`
}

// Document is a normalized document ready for fingerprinting. Content is
// lowercase with comments and whitespace removed; Length counts its runes.
type Document struct {
	Name     string
	Language string
	Content  string
	Length   int
	// Digest is the hex SHA-256 of the raw input; it keys the fingerprint cache.
	Digest string
}
