package billing

import (
	"context"
	"fmt"
	"time"
)

// NumberPrefix returns the document-number prefix for the kind
func (k DocumentKind) NumberPrefix() string {
	switch k {
	case DocumentKindReconnection:
		return "REC"
	case DocumentKindCreditNote:
		return "NC"
	case DocumentKindDebitNote:
		return "ND"
	default:
		return "FAC"
	}
}

// SequenceRepository produces monotonically increasing values per bucket key.
// Next must be implemented as an atomic increment-and-fetch: concurrent
// callers for the same bucket must never observe the same value.
type SequenceRepository interface {
	Next(ctx context.Context, bucketKey string) (int64, error)
}

// SequenceBucketKey builds the per-type monthly counter key, e.g. "FAC-202608"
func SequenceBucketKey(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, t.Format("200601"))
}

// ComposeDocumentNumber formats the final document number as
// {PREFIX}-{YYYYMM}-{seq} with a fixed-width 4-digit sequence
func ComposeDocumentNumber(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Format("200601"), seq)
}

// FallbackDocumentNumber derives a number from the clock when the counter
// store is unavailable. Trades strict sequentiality for availability: invoice
// creation must not block on the generator. Callers log its use at warn level.
func FallbackDocumentNumber(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s-T%06d", prefix, t.Format("200601"), t.UnixMilli()%1000000)
}
