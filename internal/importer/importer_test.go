package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, FormatPichincha, r.Get("PICHINCHA").Format())
	assert.Equal(t, FormatPacifico, r.Get(FormatPacifico).Format())
	assert.Nil(t, r.Get(FormatUnknown))

	assert.Equal(t, FormatGeneric, r.Resolve(FormatUnknown).Format())
	assert.Equal(t, FormatGeneric, NewRegistry().Resolve(FormatPichincha).Format())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&PichinchaParser{})
	assert.Panics(t, func() { r.Register(&PichinchaParser{}) })
}
