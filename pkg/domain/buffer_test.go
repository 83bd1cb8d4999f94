package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koineramitranjan/threads/pkg/domain"
)

func TestBuffer_DetachMovesOwnership(t *testing.T) {
	buf := domain.NewBuffer([]byte("payload"))
	assert.Equal(t, 7, buf.Len())

	data := buf.Detach()
	assert.Equal(t, []byte("payload"), data)

	// The sender side is empty after the move.
	assert.Nil(t, buf.Bytes())
	assert.Equal(t, 0, buf.Len())
}

func TestBuffer_DetachIsOnceOnly(t *testing.T) {
	buf := domain.NewBuffer([]byte{1, 2, 3})
	first := buf.Detach()
	second := buf.Detach()

	assert.Equal(t, []byte{1, 2, 3}, first)
	assert.Nil(t, second)
}
