package recipients

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewToken mints an access token for a recipient or direct link. ULIDs
// over crypto/rand entropy are unguessable and sort by creation time.
func NewToken() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
