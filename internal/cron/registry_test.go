package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	a := &testJob{name: "a"}
	b := &testJob{name: "b"}
	registry := NewRegistry(a, nil)
	registry.Register(nil)
	registry.Register(b)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, a, jobs[0])
	assert.Same(t, b, jobs[1])

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}
