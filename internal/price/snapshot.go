package price

// Snapshot is one point-in-time view of a coin's market. Pointer fields are
// optional upstream; nil means the provider did not report the value.
type Snapshot struct {
	USD *float64
	BTC *float64
	ETH *float64

	Change1h  *float64
	Change24h *float64
	Change7d  *float64

	High24h               float64
	Low24h                float64
	MarketCap             float64
	FullyDilutedValuation float64
	TotalVolume           float64

	Rank *int
}

// Float returns a pointer to v, for building snapshots.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
