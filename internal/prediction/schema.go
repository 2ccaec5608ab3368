// Package prediction is the request pipeline: feature validation, optional
// one-hot encoding, classification, positive class resolution and result
// formatting.
package prediction

import (
	"fmt"
)

// FeatureKind tags a schema slot.
type FeatureKind int

const (
	Numeric FeatureKind = iota
	Categorical
)

func (k FeatureKind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

func (k FeatureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FeatureKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "numeric":
		*k = Numeric
	case "categorical":
		*k = Categorical
	default:
		return fmt.Errorf("unknown feature kind %q", text)
	}
	return nil
}

// FeatureSlot is one named entry of a FeatureSchema.
type FeatureSlot struct {
	Name string      `json:"name"`
	Kind FeatureKind `json:"kind"`
}

// FeatureSchema is the ordered set of features the artifacts were fitted on.
type FeatureSchema struct {
	slots []FeatureSlot
}

// NewFeatureSchema builds a schema from ordered names. Every name listed in
// categorical must also appear in names.
func NewFeatureSchema(names, categorical []string) (*FeatureSchema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("feature schema must declare at least one feature")
	}

	cat := make(map[string]bool, len(categorical))
	for _, c := range categorical {
		cat[c] = true
	}

	seen := make(map[string]bool, len(names))
	slots := make([]FeatureSlot, 0, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("feature schema contains an empty name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate feature %q", name)
		}
		seen[name] = true

		kind := Numeric
		if cat[name] {
			kind = Categorical
			delete(cat, name)
		}
		slots = append(slots, FeatureSlot{Name: name, Kind: kind})
	}

	for c := range cat {
		return nil, fmt.Errorf("categorical feature %q is not in the schema", c)
	}

	return &FeatureSchema{slots: slots}, nil
}

// DefaultSchema is X1..X18, all numeric.
func DefaultSchema() *FeatureSchema {
	slots := make([]FeatureSlot, 18)
	for i := range slots {
		slots[i] = FeatureSlot{Name: fmt.Sprintf("X%d", i+1), Kind: Numeric}
	}
	return &FeatureSchema{slots: slots}
}

// Slots returns a copy of the ordered slots.
func (s *FeatureSchema) Slots() []FeatureSlot {
	return append([]FeatureSlot(nil), s.slots...)
}

func (s *FeatureSchema) Len() int { return len(s.slots) }

func (s *FeatureSchema) Names() []string {
	names := make([]string, len(s.slots))
	for i, slot := range s.slots {
		names[i] = slot.Name
	}
	return names
}

// CategoricalNames returns the categorical slot names in schema order.
func (s *FeatureSchema) CategoricalNames() []string {
	return s.namesOf(Categorical)
}

// NumericNames returns the numeric slot names in schema order.
func (s *FeatureSchema) NumericNames() []string {
	return s.namesOf(Numeric)
}

func (s *FeatureSchema) HasCategorical() bool {
	for _, slot := range s.slots {
		if slot.Kind == Categorical {
			return true
		}
	}
	return false
}

func (s *FeatureSchema) namesOf(kind FeatureKind) []string {
	var names []string
	for _, slot := range s.slots {
		if slot.Kind == kind {
			names = append(names, slot.Name)
		}
	}
	return names
}
