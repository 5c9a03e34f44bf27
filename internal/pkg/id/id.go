package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. Books, questions and notification
// records all get ULID ids: they sort by creation time and need no
// coordination between writers.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
