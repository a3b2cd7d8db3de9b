package mocks

import (
	"sync"

	"github.com/mcoot/rightsquest/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// BytesResults is a queue of results to return from Bytes
	BytesResults [][]byte
	bytesIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Bytes returns the next queued result, or n zero bytes if none remaining
func (r *MockRandom) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bytesIndex >= len(r.BytesResults) {
		return make([]byte, n)
	}
	result := r.BytesResults[r.bytesIndex]
	r.bytesIndex++
	return result
}

// QueueBytes adds values to the Bytes result queue
func (r *MockRandom) QueueBytes(values ...[]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BytesResults = append(r.BytesResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BytesResults = nil
	r.bytesIndex = 0
}
