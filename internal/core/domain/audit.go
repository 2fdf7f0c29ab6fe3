package domain

// AuditEntry is one row of the append-only transaction log.
// Entries are never updated or deleted; ID is the write sequence.
type AuditEntry struct {
	ID      int64
	Message string
}
