package schedule

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces slot identifiers. Implementations must never repeat a value.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random UUIDv4 identifiers.
type UUIDGenerator struct{}

// NewID returns a new UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator issues "1", "2", "3", ... scoped to one instance.
type SequenceGenerator struct {
	next atomic.Int64
}

// NewSequenceGenerator starts a sequence whose first id is start+1.
func NewSequenceGenerator(start int64) *SequenceGenerator {
	g := &SequenceGenerator{}
	g.next.Store(start)
	return g
}

// NewID returns the next number in the sequence.
func (g *SequenceGenerator) NewID() string {
	return strconv.FormatInt(g.next.Add(1), 10)
}
