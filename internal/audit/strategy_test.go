package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStrategy struct{ name string }

func (s *fakeStrategy) Name() string             { return s.name }
func (s *fakeStrategy) Check(in Input) []Finding { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeStrategy{name: "total-wealth"})
	r.Register(&fakeStrategy{name: "monthly-accounting"})

	assert.NotNil(t, r.Get("Total-Wealth"))
	assert.Nil(t, r.Get("unknown"))
	assert.Equal(t, []string{"monthly-accounting", "total-wealth"}, r.Names())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeStrategy{name: "total-wealth"})
	assert.Panics(t, func() { r.Register(&fakeStrategy{name: "total-wealth"}) })
}
