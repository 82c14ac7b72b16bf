// Package axis provides the bounded-numeric persistent store for
// per-character and per-relationship axes. Reads are open; writes go
// through writer capabilities minted before the registry is sealed, which
// keeps axis mutation confined to the outcome applier and the
// relationship engine.
package axis

import (
	"sort"
	"strings"

	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/fault"
)

// SubjectKey identifies the owner of an axis value: either a single
// character or a canonicalized unordered pair.
type SubjectKey string

// CharacterKey builds the subject key for a single character.
func CharacterKey(id campaign.CharacterID) SubjectKey {
	return SubjectKey(id)
}

// CampaignKey is the reserved subject for campaign-wide pools, such as
// the unit's reputation pool.
const CampaignKey SubjectKey = "campaign"

// PairKey builds the canonical subject key for an unordered pair.
// PairKey(a, b) and PairKey(b, a) are identical.
func PairKey(a, b campaign.CharacterID) SubjectKey {
	if b < a {
		a, b = b, a
	}
	return SubjectKey(string(a) + "|" + string(b))
}

// CheckSubjectID rejects character ids that would collide with the
// subject key encoding: the pair separator and the reserved campaign
// key. Hosts supply ids; the simulation validates them at construction.
func CheckSubjectID(id campaign.CharacterID) error {
	if strings.ContainsRune(string(id), '|') {
		return fault.Config(string(id), "character id may not contain the pair separator %q", "|")
	}
	if SubjectKey(id) == CampaignKey {
		return fault.Config(string(id), "character id collides with the reserved campaign subject")
	}
	return nil
}

// Bounds is the inclusive value range configured for an axis.
type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Clamp forces v into the bounds.
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Registry holds every axis value in the simulation. Values default to
// zero; only axes with registered bounds may be read or written.
type Registry struct {
	bounds map[string]Bounds
	values map[SubjectKey]map[string]int
	sealed bool
}

// NewRegistry creates a registry over the configured axis bounds.
func NewRegistry(bounds map[string]Bounds) *Registry {
	b := make(map[string]Bounds, len(bounds))
	for name, rng := range bounds {
		b[name] = rng
	}
	return &Registry{
		bounds: b,
		values: make(map[SubjectKey]map[string]int),
	}
}

// Bounds returns the configured range for an axis.
func (r *Registry) Bounds(axis string) (Bounds, bool) {
	b, ok := r.bounds[axis]
	return b, ok
}

// Get returns the current value for (subject, axis). Unregistered axes
// are a configuration error; an absent value reads as zero.
func (r *Registry) Get(subject SubjectKey, axis string) (int, error) {
	if _, ok := r.bounds[axis]; !ok {
		return 0, fault.Config(axis, "axis has no registered bounds")
	}
	return r.values[subject][axis], nil
}

// Writer is a mint-once capability for mutating the registry. Components
// without a writer can only read.
type Writer struct {
	reg   *Registry
	owner string
}

// NewWriter mints a writer capability. Minting after Seal is an
// invariant violation: no component may gain write access once the
// authorized writers are wired.
func (r *Registry) NewWriter(owner string) (*Writer, error) {
	if r.sealed {
		return nil, fault.Invariant("axis registry is sealed; %s may not obtain write access", owner)
	}
	return &Writer{reg: r, owner: owner}, nil
}

// Seal closes the registry to new writers.
func (r *Registry) Seal() {
	r.sealed = true
}

// Registered reports whether the axis has configured bounds. Writers use
// it to prevalidate multi-axis updates before mutating anything.
func (w *Writer) Registered(axis string) bool {
	_, ok := w.reg.bounds[axis]
	return ok
}

// Owner returns the name the writer was minted under.
func (w *Writer) Owner() string {
	return w.owner
}

// Modify applies a delta to (subject, axis), clamping the result to the
// axis bounds, and returns the new value. The write either fully applies
// or is rejected before any state changes.
func (w *Writer) Modify(subject SubjectKey, axis string, delta int) (int, error) {
	b, ok := w.reg.bounds[axis]
	if !ok {
		return 0, fault.Config(axis, "axis has no registered bounds")
	}
	vals := w.reg.values[subject]
	if vals == nil {
		vals = make(map[string]int)
		w.reg.values[subject] = vals
	}
	next := b.Clamp(vals[axis] + delta)
	vals[axis] = next
	return next, nil
}

// Set forces (subject, axis) to a clamped absolute value. Used by
// snapshot restore and trigger handlers that assign rather than shift.
func (w *Writer) Set(subject SubjectKey, axis string, value int) (int, error) {
	b, ok := w.reg.bounds[axis]
	if !ok {
		return 0, fault.Config(axis, "axis has no registered bounds")
	}
	vals := w.reg.values[subject]
	if vals == nil {
		vals = make(map[string]int)
		w.reg.values[subject] = vals
	}
	next := b.Clamp(value)
	vals[axis] = next
	return next, nil
}

// Snapshot is the whole-state serialized form of the registry values.
type Snapshot struct {
	Values map[SubjectKey]map[string]int `json:"values"`
}

// Snapshot copies the full registry state.
func (r *Registry) Snapshot() Snapshot {
	out := Snapshot{Values: make(map[SubjectKey]map[string]int, len(r.values))}
	for subject, vals := range r.values {
		cp := make(map[string]int, len(vals))
		for axis, v := range vals {
			cp[axis] = v
		}
		out.Values[subject] = cp
	}
	return out
}

// Restore replaces the registry values with the snapshot. Axes in the
// snapshot that have no registered bounds are a configuration error and
// leave the registry untouched.
func (r *Registry) Restore(snap Snapshot) error {
	for _, vals := range snap.Values {
		for axis := range vals {
			if _, ok := r.bounds[axis]; !ok {
				return fault.Config(axis, "snapshot references axis with no registered bounds")
			}
		}
	}
	values := make(map[SubjectKey]map[string]int, len(snap.Values))
	for subject, vals := range snap.Values {
		cp := make(map[string]int, len(vals))
		for axis, v := range vals {
			cp[axis] = v
		}
		values[subject] = cp
	}
	r.values = values
	return nil
}

// Subjects returns every subject key with at least one stored value,
// sorted for stable output.
func (r *Registry) Subjects() []SubjectKey {
	out := make([]SubjectKey, 0, len(r.values))
	for k := range r.values {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValuesFor returns a copy of all axis values stored for a subject.
func (r *Registry) ValuesFor(subject SubjectKey) map[string]int {
	vals := r.values[subject]
	cp := make(map[string]int, len(vals))
	for axis, v := range vals {
		cp[axis] = v
	}
	return cp
}
