package pipeline

// Counters tracks aggregate outcomes across a batch run. Every candidate
// bumps exactly one of the first four buckets. LogErrors sits outside that
// accounting: it counts renames that succeeded but could not be logged.
type Counters struct {
	Renamed   int
	Skipped   int
	Exists    int
	Failed    int
	LogErrors int
}

// Total returns the number of candidates processed.
func (c *Counters) Total() int {
	return c.Renamed + c.Skipped + c.Exists + c.Failed
}

// Add accumulates another batch into c. Watch mode sums its per-event
// batches this way before printing one final summary.
func (c *Counters) Add(other Counters) {
	c.Renamed += other.Renamed
	c.Skipped += other.Skipped
	c.Exists += other.Exists
	c.Failed += other.Failed
	c.LogErrors += other.LogErrors
}

// Zero reports whether no candidate left a mark, used to detect no-op runs.
func (c *Counters) Zero() bool {
	return c.Renamed == 0 && c.Skipped == 0 && c.Exists == 0 && c.Failed == 0
}
