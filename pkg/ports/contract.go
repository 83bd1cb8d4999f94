package ports

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koineramitranjan/threads/pkg/domain"
)

const contractTimeout = 5 * time.Second

// RunTransportContract runs a suite of tests to verify that a Transport
// implementation adheres to the interface contract.
//
// The factory must return an unstarted transport whose background context
// resolves the script name "echo" to a task echoing every data payload
// back as a message envelope. The suite calls the factory once per
// subtest.
func RunTransportContract(t *testing.T, factory func(t *testing.T) Transport) {
	t.Run("Echo Round-Trip", func(t *testing.T) {
		tr := factory(t)
		inbound := subscribeAll(tr)
		require.NoError(t, tr.Start())
		defer func() { _ = tr.Terminate() }()

		require.NoError(t, tr.Send(domain.Envelope{Kind: domain.KindRunScript, Script: "echo"}))
		require.NoError(t, tr.Send(domain.Envelope{Kind: domain.KindData, Payload: []any{"ping"}}))

		env := waitKind(t, inbound, domain.KindMessage)
		require.Len(t, env.Payload, 1)
		assert.Equal(t, "ping", env.Payload[0])
	})

	t.Run("FIFO Order", func(t *testing.T) {
		tr := factory(t)
		inbound := subscribeAll(tr)
		require.NoError(t, tr.Start())
		defer func() { _ = tr.Terminate() }()

		require.NoError(t, tr.Send(domain.Envelope{Kind: domain.KindRunScript, Script: "echo"}))

		const n = 5
		for i := 0; i < n; i++ {
			require.NoError(t, tr.Send(domain.Envelope{
				Kind:    domain.KindData,
				Payload: []any{fmt.Sprintf("seq-%d", i)},
			}))
		}
		for i := 0; i < n; i++ {
			env := waitKind(t, inbound, domain.KindMessage)
			require.Len(t, env.Payload, 1)
			assert.Equal(t, fmt.Sprintf("seq-%d", i), env.Payload[0])
		}
	})

	t.Run("Terminate Is Idempotent", func(t *testing.T) {
		tr := factory(t)
		inbound := subscribeAll(tr)
		require.NoError(t, tr.Start())

		require.NoError(t, tr.Terminate())
		require.NoError(t, tr.Terminate(), "second Terminate must be a no-op")

		waitKind(t, inbound, domain.KindExit)
		assertNoKind(t, inbound, domain.KindExit)
	})

	t.Run("Send After Terminate Fails Locally", func(t *testing.T) {
		tr := factory(t)
		inbound := subscribeAll(tr)
		require.NoError(t, tr.Start())

		require.NoError(t, tr.Terminate())
		waitKind(t, inbound, domain.KindExit)

		err := tr.Send(domain.Envelope{Kind: domain.KindData, Payload: []any{"late"}})
		assert.ErrorIs(t, err, domain.ErrTerminated)
	})
}

// RunPortAllocatorContract verifies that a PortAllocator yields a strictly
// increasing sequence starting at base and that Reset restores it.
func RunPortAllocatorContract(t *testing.T, alloc PortAllocator, base int) {
	t.Run("Strictly Increasing From Base", func(t *testing.T) {
		alloc.Reset()
		assert.Equal(t, base, alloc.Next())
		assert.Equal(t, base+1, alloc.Next())
		assert.Equal(t, base+2, alloc.Next())
	})

	t.Run("Reset Restores Base", func(t *testing.T) {
		alloc.Next()
		alloc.Reset()
		assert.Equal(t, base, alloc.Next())
	})
}

func subscribeAll(tr Transport) <-chan domain.Envelope {
	ch := make(chan domain.Envelope, 64)
	tr.Subscribe(func(env domain.Envelope) {
		ch <- env
	})
	return ch
}

// waitKind consumes inbound envelopes until one of the wanted kind arrives.
// Envelopes of other kinds are skipped, except errors, which fail the test.
func waitKind(t *testing.T, ch <-chan domain.Envelope, kind domain.Kind) domain.Envelope {
	t.Helper()
	deadline := time.After(contractTimeout)
	for {
		select {
		case env := <-ch:
			if env.Kind == kind {
				return env
			}
			if env.Kind == domain.KindError {
				t.Fatalf("unexpected error envelope while waiting for %q: %v", kind, env.Err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q envelope", kind)
		}
	}
}

func assertNoKind(t *testing.T, ch <-chan domain.Envelope, kind domain.Kind) {
	t.Helper()
	select {
	case env := <-ch:
		if env.Kind == kind {
			t.Fatalf("received duplicate %q envelope", kind)
		}
	case <-time.After(200 * time.Millisecond):
	}
}
