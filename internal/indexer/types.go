package indexer

// Document is one uploaded file. It exists only for the duration of a single
// ingest call; the raw bytes are never persisted.
type Document struct {
	Filename string
	Data     []byte
}

// Chunk is a bounded text window cut from one page of a document. Chunks are
// the unit of embedding and indexing: each chunk maps to exactly one index
// entry.
type Chunk struct {
	Source string // source document filename
	Page   int    // 1-based page number
	Index  int    // ordinal within the page, starts at 0
	Text   string
}

// DocumentFailure reports one document that could not be processed.
type DocumentFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// IngestReport summarizes one ingest call. A corrupt document does not sink
// its siblings; it shows up in Failures while the rest are indexed.
type IngestReport struct {
	DocumentsIndexed int               `json:"documents_indexed"`
	ChunksIndexed    int               `json:"chunks_indexed"`
	Failures         []DocumentFailure `json:"failures,omitempty"`
}
