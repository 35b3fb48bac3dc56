package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	ID   string
	Name string
}

func TestMemory(t *testing.T) {
	s := NewMemory[string, record](func(r *record) string { return r.ID })

	s.Put(&record{ID: "r1", Name: "one"})
	s.Put(&record{ID: "r2", Name: "two"})
	s.Put(nil)
	assert.Equal(t, 2, s.Len())

	s.Put(&record{ID: "r1", Name: "uno"})
	assert.ElementsMatch(t, []string{"uno", "two"}, names(s.List()))

	assert.True(t, s.Delete("r1"))
	assert.False(t, s.Delete("r1"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"two"}, names(s.List()))
}

func names(records []*record) []string {
	var ret []string
	for _, r := range records {
		ret = append(ret, r.Name)
	}
	return ret
}
