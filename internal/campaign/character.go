// Package campaign provides the character roster and calendar data the
// host application supplies to the core. The core reads characters but
// never owns or mutates the character record itself.
package campaign

// CharacterID is the opaque identifier the host uses for a character.
type CharacterID string

// Status is the host-reported duty status of a character.
type Status string

const (
	StatusActive   Status = "active"
	StatusInjured  Status = "injured"
	StatusAbsent   Status = "absent"
	StatusRetired  Status = "retired"
	StatusDeceased Status = "deceased"
)

// Character is a read-only view of one roster entry.
type Character struct {
	ID          CharacterID    `json:"id"`
	Name        string         `json:"name"`
	Professions []string       `json:"professions"` // Concrete profession tags, e.g. "mekwarrior".
	Status      Status         `json:"status"`
	Age         int            `json:"age"`    // Sim-years.
	Skills      map[string]int `json:"skills"` // Skill name → level.
}

// Skill returns the character's level in the named skill, 0 when untrained.
func (c *Character) Skill(name string) int {
	return c.Skills[name]
}

// HasProfession reports whether the character carries the concrete tag.
func (c *Character) HasProfession(tag string) bool {
	for _, p := range c.Professions {
		if p == tag {
			return true
		}
	}
	return false
}

// Roster is an id-indexed character collection with stable iteration order.
type Roster struct {
	byID  map[CharacterID]*Character
	order []CharacterID
}

// NewRoster builds a roster from the host's character list. Insertion
// order is preserved so date-less selection stays fully deterministic.
func NewRoster(chars []*Character) *Roster {
	r := &Roster{byID: make(map[CharacterID]*Character, len(chars))}
	for _, c := range chars {
		if _, dup := r.byID[c.ID]; dup {
			continue
		}
		r.byID[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	return r
}

// Get returns the character with the given id, or nil.
func (r *Roster) Get(id CharacterID) *Character {
	return r.byID[id]
}

// IDs returns all character ids in roster order.
func (r *Roster) IDs() []CharacterID {
	out := make([]CharacterID, len(r.order))
	copy(out, r.order)
	return out
}

// Each calls fn for every character in roster order.
func (r *Roster) Each(fn func(*Character)) {
	for _, id := range r.order {
		fn(r.byID[id])
	}
}

// Len returns the roster size.
func (r *Roster) Len() int {
	return len(r.order)
}
