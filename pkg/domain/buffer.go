package domain

import "sync"

// Buffer is a transferable byte buffer. Sending it with a transfer list
// moves ownership of the backing memory to the receiver; the sender side is
// left detached and reads as empty afterward.
type Buffer struct {
	mu   sync.Mutex
	data []byte
}

// NewBuffer wraps data in a transferable buffer. The buffer takes ownership
// of the slice.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Detach moves the backing slice out of the buffer. It returns the data
// exactly once; the buffer is empty afterward and further calls return nil.
func (b *Buffer) Detach() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	data := b.data
	b.data = nil
	return data
}

// Bytes returns the backing slice, or nil if the buffer has been detached.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Len reports the current length of the backing slice.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
