package domain

import "time"

// PointBalance tracks per-account eco-points. LifetimePoints never
// decreases; converting moves points from Available to Converted, so
// Lifetime == Available + Converted holds at all times.
type PointBalance struct {
	AccountID       string
	LifetimePoints  int64
	AvailablePoints int64
	ConvertedPoints int64
	UpdatedAt       time.Time
}

// Consistent reports whether the point conservation invariant holds.
func (p *PointBalance) Consistent() bool {
	return p.LifetimePoints == p.AvailablePoints+p.ConvertedPoints
}
