// Package blob abstracts thumbnail storage: upload bytes, get back a
// publicly retrievable URL.
package blob

import (
	"context"
	"io"
)

// Store accepts an upload and returns an opaque handle that resolves to
// a public URL. A failed upload aborts only the submission that issued
// it; it never touches session or catalog state.
type Store interface {
	Upload(ctx context.Context, bucket, filename string, r io.Reader) (handle string, err error)
	PublicURL(handle string) string
}
