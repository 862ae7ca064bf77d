package rag

// AskRequest is a single question against the indexed documents.
type AskRequest struct {
	Question string `json:"question"`
	// K overrides the configured number of passages to retrieve; zero means
	// use the configured default.
	K int `json:"k,omitempty"`
}

// Passage is one retrieved context fragment with its provenance and
// similarity-ranked position (rank 0 is the best match).
type Passage struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Page   int     `json:"page"`
	Score  float32 `json:"score"`
	Rank   int     `json:"rank"`
}

// Answer is a generated response plus the exact passage sequence it was
// grounded on, in retrieval order, for citation display.
type Answer struct {
	Text    string    `json:"answer"`
	Sources []Passage `json:"sources"`
}
