package telemetry

// Recorder collects telemetry records during a simulation run.
type Recorder struct {
	records []Record
}

// NewRecorder creates a Recorder ready for appending.
func NewRecorder() *Recorder {
	return &Recorder{
		records: make([]Record, 0),
	}
}

// Append adds a record to the stream.
func (r *Recorder) Append(rec Record) {
	r.records = append(r.records, rec)
}

// Records returns the full ordered stream.
func (r *Recorder) Records() []Record {
	return r.records
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	return len(r.records)
}

// CountByType returns a per-type event count.
func (r *Recorder) CountByType() map[EventType]int {
	counts := make(map[EventType]int)
	for _, rec := range r.records {
		counts[rec.Type]++
	}
	return counts
}
