package storage

import (
	"errors"
	"io"
)

var ErrBadKey = errors.New("invalid blob key")

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error // deleting a missing key is not an error
}
