package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier as string.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Short returns the first segment of a new identifier, handy for labels.
func Short() string {
	id := New()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
