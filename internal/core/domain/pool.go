package domain

// PoolStats is a point-in-time snapshot of a connection pool.
type PoolStats struct {
	Open      int  `json:"open"`
	Idle      int  `json:"idle"`
	Leased    int  `json:"leased"`
	Waiting   int  `json:"waiting"`
	MinActive int  `json:"min_active"`
	MaxActive int  `json:"max_active"`
	Closed    bool `json:"closed"`
}
