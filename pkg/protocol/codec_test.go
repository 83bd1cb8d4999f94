package protocol_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koineramitranjan/threads/pkg/domain"
	"github.com/koineramitranjan/threads/pkg/protocol"
)

func TestCodec_RoundTrip(t *testing.T) {
	var stream bytes.Buffer
	writer := protocol.NewWriter(&stream)
	reader := protocol.NewReader(&stream)

	sent := domain.Envelope{
		Kind:    domain.KindData,
		Payload: []any{"hello", int64(42)},
	}
	require.NoError(t, writer.Write(sent))

	got, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, domain.KindData, got.Kind)
	require.Len(t, got.Payload, 2)
	assert.Equal(t, "hello", got.Payload[0])
}

func TestCodec_ErrorEnvelope(t *testing.T) {
	var stream bytes.Buffer
	writer := protocol.NewWriter(&stream)
	reader := protocol.NewReader(&stream)

	require.NoError(t, writer.Write(domain.Envelope{
		Kind: domain.KindError,
		Err:  &domain.ErrorInfo{Message: "boom", Stack: "at task"},
	}))

	got, err := reader.Read()
	require.NoError(t, err)
	require.NotNil(t, got.Err)
	assert.Equal(t, "boom", got.Err.Message)
	assert.Equal(t, "at task", got.Err.Stack)
}

func TestCodec_MultipleFramesInOrder(t *testing.T) {
	var stream bytes.Buffer
	writer := protocol.NewWriter(&stream)
	reader := protocol.NewReader(&stream)

	kinds := []domain.Kind{domain.KindProgress, domain.KindProgress, domain.KindDone}
	for _, k := range kinds {
		require.NoError(t, writer.Write(domain.Envelope{Kind: k}))
	}
	for _, k := range kinds {
		got, err := reader.Read()
		require.NoError(t, err)
		assert.Equal(t, k, got.Kind)
	}

	_, err := reader.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCodec_MalformedBodyKeepsFrameSync(t *testing.T) {
	var stream bytes.Buffer

	// A well-framed but undecodable body...
	garbage := []byte{0xff, 0xff, 0xff}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(garbage)))
	stream.Write(prefix[:])
	stream.Write(garbage)

	// ...followed by a valid frame.
	writer := protocol.NewWriter(&stream)
	require.NoError(t, writer.Write(domain.Envelope{Kind: domain.KindDone}))

	reader := protocol.NewReader(&stream)
	_, err := reader.Read()
	assert.ErrorIs(t, err, protocol.ErrMalformed)

	got, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, domain.KindDone, got.Kind)
}

func TestCodec_OversizedFrameRejected(t *testing.T) {
	var stream bytes.Buffer
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(protocol.MaxFrameSize+1))
	stream.Write(prefix[:])

	reader := protocol.NewReader(&stream)
	_, err := reader.Read()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, protocol.ErrMalformed)
}
