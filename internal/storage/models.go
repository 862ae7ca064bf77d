package storage

import "time"

// Ingest outcome recorded in the documents ledger.
const (
	StatusIndexed = "indexed"
	StatusFailed  = "failed"
)

// DocumentRecord is one row of the ingest ledger: what was uploaded, how many
// pages and chunks came out of it, and whether the ingest succeeded. Raw
// document bytes are never stored; only this bookkeeping survives the call.
type DocumentRecord struct {
	ID        string // UUID
	Filename  string
	Pages     int
	Chunks    int
	Status    string // StatusIndexed or StatusFailed
	Error     string // failure message when Status == StatusFailed
	CreatedAt time.Time
}
