package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// NewOrderNumber builds a human-readable order number of the form
// SO-YYYYMMDD-NNNN. The 4-digit suffix is random, so two concurrent
// creations can collide; uniqueness is enforced by the storage layer and
// the caller retries with a fresh number on conflict.
func NewOrderNumber(t time.Time) string {
	return fmt.Sprintf("SO-%s-%04d", t.Format("20060102"), rand.Intn(10000))
}
