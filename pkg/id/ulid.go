package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// GetUlid returns a time-ordered ULID string, used as the run id of a dispatch.
func GetUlid() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// UlidTime extracts the creation time encoded in a ULID.
func UlidTime(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
