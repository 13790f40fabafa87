package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	p := Params{}.Normalize(20, 100)
	assert.Equal(t, Params{Page: 1, Limit: 20}, p)
	assert.Equal(t, 0, p.Offset())

	p = Params{Page: 3, Limit: 500}.Normalize(20, 100)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset())
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, Meta{Total: 21, Page: 1, Limit: 10, Pages: 3}, NewMeta(Params{Page: 1, Limit: 10}, 21))
	assert.Equal(t, 0, NewMeta(Params{Page: 1, Limit: 10}, 0).Pages)
	assert.Equal(t, 1, NewMeta(Params{Page: 1, Limit: 10}, 10).Pages)
}
