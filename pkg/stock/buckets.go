// Package stock holds the pure bucket arithmetic shared by the movement ledger,
// the unit registry and the availability resolver.
package stock

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

// Bucket names one of the counted stock buckets.
type Bucket string

const (
	BucketTotal       Bucket = "total"
	BucketAvailable   Bucket = "available"
	BucketReserved    Bucket = "reserved"
	BucketMaintenance Bucket = "maintenance"
	BucketDamaged     Bucket = "damaged"
)

// Buckets is the four-bucket aggregate plus its total.
type Buckets struct {
	Total       int `json:"totalStock"`
	Available   int `json:"availableStock"`
	Reserved    int `json:"reservedStock"`
	Maintenance int `json:"maintenanceStock"`
	Damaged     int `json:"damagedStock"`
}

// Committed is the capacity held outside the available bucket.
func (b Buckets) Committed() int {
	return b.Reserved + b.Maintenance + b.Damaged
}

// Balanced reports whether total equals the sum of the four buckets.
func (b Buckets) Balanced() bool {
	return b.Total == b.Available+b.Committed()
}

// Get returns the value held in the named bucket.
func (b Buckets) Get(bucket Bucket) int {
	switch bucket {
	case BucketTotal:
		return b.Total
	case BucketAvailable:
		return b.Available
	case BucketReserved:
		return b.Reserved
	case BucketMaintenance:
		return b.Maintenance
	case BucketDamaged:
		return b.Damaged
	}
	return 0
}

// Validate checks that no bucket is negative and that the buckets sum to total.
// A failure means the aggregate is corrupt, so it maps to INTERNAL.
func (b Buckets) Validate() error {
	for _, bucket := range []Bucket{BucketTotal, BucketAvailable, BucketReserved, BucketMaintenance, BucketDamaged} {
		if v := b.Get(bucket); v < 0 {
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("%s stock cannot be negative", bucket)).
				WithDetails(map[string]any{"bucket": string(bucket), "value": v})
		}
	}
	if !b.Balanced() {
		return pkgerrors.New(pkgerrors.CodeInternal, "stock buckets do not sum to total").
			WithDetails(map[string]any{"total": b.Total, "sum": b.Available + b.Committed()})
	}
	return nil
}

// Delta is a signed change per bucket, applied in one step.
type Delta struct {
	Total       int `json:"total,omitempty"`
	Available   int `json:"available,omitempty"`
	Reserved    int `json:"reserved,omitempty"`
	Maintenance int `json:"maintenance,omitempty"`
	Damaged     int `json:"damaged,omitempty"`
}

// IsZero reports whether the delta leaves every bucket untouched.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Add composes two deltas into one net delta.
func (d Delta) Add(other Delta) Delta {
	return Delta{
		Total:       d.Total + other.Total,
		Available:   d.Available + other.Available,
		Reserved:    d.Reserved + other.Reserved,
		Maintenance: d.Maintenance + other.Maintenance,
		Damaged:     d.Damaged + other.Damaged,
	}
}

// Negate returns the delta that undoes d.
func (d Delta) Negate() Delta {
	return Delta{
		Total:       -d.Total,
		Available:   -d.Available,
		Reserved:    -d.Reserved,
		Maintenance: -d.Maintenance,
		Damaged:     -d.Damaged,
	}
}

// Apply returns the buckets after applying d, or an INSUFFICIENT_STOCK error naming
// the first bucket that would go negative. The receiver is never modified.
func (b Buckets) Apply(d Delta) (Buckets, error) {
	next := Buckets{
		Total:       b.Total + d.Total,
		Available:   b.Available + d.Available,
		Reserved:    b.Reserved + d.Reserved,
		Maintenance: b.Maintenance + d.Maintenance,
		Damaged:     b.Damaged + d.Damaged,
	}
	for _, bucket := range []Bucket{BucketAvailable, BucketReserved, BucketMaintenance, BucketDamaged, BucketTotal} {
		if after := next.Get(bucket); after < 0 {
			current := b.Get(bucket)
			return b, InsufficientStock(bucket, current-after, current)
		}
	}
	return next, nil
}

// InsufficientStock builds the typed error raised when a bucket lacks capacity.
func InsufficientStock(bucket Bucket, required, available int) *pkgerrors.Error {
	shortfall := required - available
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient %s stock: required %d, available %d", bucket, required, available),
	).WithDetails(map[string]any{
		"bucket":    string(bucket),
		"required":  required,
		"available": available,
		"shortfall": shortfall,
	})
}
