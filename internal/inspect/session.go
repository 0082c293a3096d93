package inspect

import (
	"context"
	"fmt"

	"github.com/compose-network/rollup-configurator/internal/slot"
)

type (
	Inspector interface {
		Inspect(ctx context.Context, kind Kind, fileName string, data []byte) (*Result, error)
	}

	// Session keeps one slot per artifact kind. A new upload clears the slot
	// before the request starts.
	Session struct {
		inspector Inspector
		slots     map[Kind]*slot.Slot[*Result]
	}
)

func NewSession(inspector Inspector) *Session {
	slots := make(map[Kind]*slot.Slot[*Result], len(Kinds()))
	for _, k := range Kinds() {
		slots[k] = slot.New[*Result]()
	}
	return &Session{inspector: inspector, slots: slots}
}

// Inspect runs one upload through the slot for its kind. A completion that was
// superseded by a later upload is not recorded.
func (s *Session) Inspect(ctx context.Context, kind Kind, fileName string, data []byte) (*Result, error) {
	sl, ok := s.slots[kind]
	if !ok {
		_, err := ParseKind(string(kind))
		return nil, &InspectionError{Kind: kind, Op: "request", Err: err}
	}

	ticket := sl.Begin()
	result, err := s.inspector.Inspect(ctx, kind, fileName, data)
	sl.Complete(ticket, result, err)

	return result, err
}

// Snapshot returns the current state of the slot for kind.
func (s *Session) Snapshot(kind Kind) (slot.Snapshot[*Result], error) {
	sl, ok := s.slots[kind]
	if !ok {
		return slot.Snapshot[*Result]{}, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return sl.Snapshot(), nil
}
