package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ca-lang/cac/runtime"
)

func TestRegistryTracksUsedExternsInFixedOrder(t *testing.T) {
	r := runtime.NewRegistry()
	r.Use("GC_free")
	r.Use("printf")

	used := r.Used()
	assert.Len(t, used, 2)
	assert.Equal(t, "printf", used[0].Name) // Externs' declared order, not call order
	assert.Equal(t, "GC_free", used[1].Name)
}

func TestUsePanicsOnUnknownExtern(t *testing.T) {
	r := runtime.NewRegistry()
	assert.Panics(t, func() { r.Use("not_a_real_extern") })
}
