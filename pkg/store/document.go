package store

// Document is one source file loaded into the retrieval index.
type Document struct {
	ID       string                 `json:"id"` // root-relative path
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}
