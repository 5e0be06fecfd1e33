package domain

// IngestStatus describes how an ingestion attempt for one currency ended.
type IngestStatus string

const (
	// IngestStored means new observations were written.
	IngestStored IngestStatus = "STORED"
	// IngestUpToDate means every parsed date was already stored.
	IngestUpToDate IngestStatus = "UP_TO_DATE"
	// IngestInProgress means another ingestion held the currency lock for the whole wait.
	IngestInProgress IngestStatus = "IN_PROGRESS"
	// IngestUnavailable means the provider could not be used (down, breaker open, throttled).
	IngestUnavailable IngestStatus = "UNAVAILABLE"
	// IngestEmpty means the provider answered but no usable rows were parsed.
	IngestEmpty IngestStatus = "EMPTY"
	// IngestFailed means the store rejected the check or the write.
	IngestFailed IngestStatus = "FAILED"
)

// IngestResult summarises a single ingest(currency) call.
type IngestResult struct {
	Currency string
	Status   IngestStatus
	// Observations holds the newly stored rows for IngestStored,
	// or the full parsed set for IngestUpToDate.
	Observations []RateObservation
	Inserted     int
	Skipped      int
}
