package database

// DispatchRecord is one row of the dispatch audit log. It never stores
// conversation content.
type DispatchRecord struct {
	ID        string `db:"id"`
	UserID    int64  `db:"user_id"`
	Backend   string `db:"backend"`
	Provider  string `db:"provider"`
	Outcome   string `db:"outcome"`
	Attempts  int    `db:"attempts"`
	LatencyMS int64  `db:"latency_ms"`
	// CreatedAt is unix milliseconds.
	CreatedAt int64 `db:"created_at"`
}

// ProviderStat aggregates audit rows per provider and outcome.
type ProviderStat struct {
	Provider     string  `db:"provider"`
	Outcome      string  `db:"outcome"`
	Count        int     `db:"count"`
	AvgLatencyMS float64 `db:"avg_latency_ms"`
}
