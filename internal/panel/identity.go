package panel

import "math/rand/v2"

// Identity tags a fetch with the slot that issued it and the generation the
// slot was at when it did. Identities from different slots never compare.
type Identity struct {
	SlotID     uint64
	Generation uint64
}

// Sequencer owns the identity of one panel slot. It hands out identities for
// outgoing requests and decides which responses may still be applied.
//
// The generation counter only grows. floor is the lowest generation that can
// still be applied: issuing a request moves it up to that request's tag, and
// applying a response moves it past the response.
type Sequencer struct {
	slot       uint64
	generation uint64
	floor      uint64
}

// NewSequencer returns a sequencer with a random slot id and generation 0.
func NewSequencer() *Sequencer {
	return &Sequencer{slot: rand.Uint64()}
}

// Current returns the slot id and the current generation.
func (s *Sequencer) Current() Identity {
	return Identity{SlotID: s.slot, Generation: s.generation}
}

// SlotID returns the stable slot id.
func (s *Sequencer) SlotID() uint64 {
	return s.slot
}

// Issue advances the generation and returns the identity to attach to a new
// request, carrying the pre-increment generation. Responses to anything
// issued earlier are rejected from now on.
func (s *Sequencer) Issue() Identity {
	tag := s.generation
	s.generation++
	s.floor = tag
	return Identity{SlotID: s.slot, Generation: tag}
}

// Advance bumps the generation without superseding in-flight requests.
func (s *Sequencer) Advance() {
	s.generation++
}

// Supersede bumps the generation and rejects every response issued so far.
// It is used when content is set locally instead of fetched.
func (s *Sequencer) Supersede() {
	s.generation++
	s.floor = s.generation
}

// Accepts reports whether a response tagged with id may be applied.
func (s *Sequencer) Accepts(id Identity) bool {
	return id.SlotID == s.slot && id.Generation >= s.floor
}

// Applied records that a response tagged with id was applied, so that it and
// everything older are rejected afterwards.
func (s *Sequencer) Applied(id Identity) {
	if id.Generation+1 > s.floor {
		s.floor = id.Generation + 1
	}
	if s.generation <= id.Generation {
		s.generation = id.Generation + 1
	}
}
