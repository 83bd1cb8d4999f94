package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koineramitranjan/threads/pkg/adapters/process"
	"github.com/koineramitranjan/threads/pkg/ports"
)

func TestCounterAllocator_Contract(t *testing.T) {
	ports.RunPortAllocatorContract(t, process.NewCounterAllocator(0), process.DefaultBasePort)
}

func TestCounterAllocator_CustomBase(t *testing.T) {
	ports.RunPortAllocatorContract(t, process.NewCounterAllocator(15000), 15000)
}

func TestCounterAllocator_SequenceIsStrictlyIncreasing(t *testing.T) {
	alloc := process.NewCounterAllocator(0)
	prev := alloc.Next()
	for i := 0; i < 100; i++ {
		next := alloc.Next()
		assert.Greater(t, next, prev)
		prev = next
	}
}
