package domain

import "time"

// Death thresholds. A pet dies from neglect, starvation, or misery; all
// three comparisons are strict, so the boundary values themselves are still
// alive.
const (
	// NeglectWindow is how long a pet survives without any interaction.
	NeglectWindow = 72 * time.Hour

	// HungerCeiling is the highest hunger level a living pet can carry.
	HungerCeiling = 50

	// HappinessFloor is the lowest happiness level a living pet can carry.
	HappinessFloor = -50
)

// IsDead reports whether p is dead at the given instant. It is a pure
// function of the pet's stats and now; callers that render pets populate
// p.IsDead from it on every read, so death is never cached between requests.
func IsDead(p *Pet, now time.Time) bool {
	return now.Sub(p.LastInteractedWithDate) > NeglectWindow ||
		p.HungerLevel > HungerCeiling ||
		p.HappinessLevel < HappinessFloor
}

// InteractionKind selects one of the three interaction flavours. The kind
// decides which stat deltas an interaction applies and which event table the
// resulting record lands in.
type InteractionKind string

// Interaction kinds.
const (
	KindFeeding  InteractionKind = "feeding"
	KindPlaytime InteractionKind = "playtime"
	KindScolding InteractionKind = "scolding"
)

// Valid reports whether k is one of the known interaction kinds.
func (k InteractionKind) Valid() bool {
	switch k {
	case KindFeeding, KindPlaytime, KindScolding:
		return true
	}
	return false
}

// Deltas returns the hunger and happiness adjustments a single interaction
// of kind k applies to a living pet. Deltas are unclamped: feeding a pet at
// hunger 0 drives hunger negative.
func (k InteractionKind) Deltas() (hungerDelta, happinessDelta int) {
	switch k {
	case KindFeeding:
		return -5, 3
	case KindPlaytime:
		return 3, 5
	case KindScolding:
		return 0, -5
	}
	return 0, 0
}

// InteractionEvent is the kind-agnostic view of a stored Feeding, Playtime
// or Scolding row. All three tables share one shape, so handlers and
// services move events around as this single value type.
type InteractionEvent struct {
	ID    uint            `json:"id"`
	Kind  InteractionKind `json:"kind"`
	PetID uint            `json:"pet_id"`
	When  time.Time       `json:"when"`
}
