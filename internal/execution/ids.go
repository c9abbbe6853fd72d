package execution

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource generates client order IDs. Injected into executors so
// simulation and tests stay deterministic.
type IDSource interface {
	Next() string
}

type uuidSource struct{}

// NewUUIDSource returns the production ID source.
func NewUUIDSource() IDSource { return uuidSource{} }

func (uuidSource) Next() string { return "ord-" + uuid.NewString() }

// SeqSource issues sequential IDs with a fixed prefix. Deterministic;
// intended for paper trading and tests.
type SeqSource struct {
	prefix string
	n      atomic.Uint64
}

// NewSeqSource creates a sequential ID source.
func NewSeqSource(prefix string) *SeqSource {
	return &SeqSource{prefix: prefix}
}

func (s *SeqSource) Next() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1))
}
