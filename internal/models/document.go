package models

// Document is one text unit read from the corpus directory. Once loaded it is
// never mutated; processing produces a new ProcessedDocument instead.
type Document struct {
	ID       string
	Path     string
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// ProcessedDocument carries a document split into chunks together with the
// embedding computed for each chunk. Embeddings[i] belongs to Chunks[i].
type ProcessedDocument struct {
	Document
	Chunks     []string
	Embeddings [][]float32
}

// Answer is the result of one query against a provisioned index.
type Answer struct {
	Text    string
	Sources []Document
}
