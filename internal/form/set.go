package form

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Set owns the form list and the ordered set of active form ids.
type Set struct {
	forms  []Form
	active []string
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Restore replaces the set contents. Active ids that reference no form are dropped.
func (s *Set) Restore(forms []Form, active []string) {
	s.forms = slices.Clone(forms)
	s.active = nil
	for _, id := range active {
		if s.indexOf(id) >= 0 && !slices.Contains(s.active, id) {
			s.active = append(s.active, id)
		}
	}
}

// Forms returns a copy of all forms in creation order.
func (s *Set) Forms() []Form {
	return slices.Clone(s.forms)
}

// ActiveIDs returns a copy of the active ids in activation order.
func (s *Set) ActiveIDs() []string {
	return slices.Clone(s.active)
}

// Get returns the form with id.
func (s *Set) Get(id string) (Form, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Form{}, false
	}
	return s.forms[i], true
}

// Create validates f, assigns a fresh id and appends it.
func (s *Set) Create(f Form) (Form, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return Form{}, ErrInvalidName
	}
	if s.nameTaken(f.Name, "") {
		return Form{}, fmt.Errorf("%w: %q", ErrDuplicateName, f.Name)
	}
	if f.EnergyType == "" {
		f.EnergyType = TargetAll
	}
	f.ID = uuid.NewString()
	s.forms = append(s.forms, f)

	slog.Debug("form created", "id", f.ID, "name", f.Name)
	return f, nil
}

// Update replaces the definition of an existing form, keeping its id.
func (s *Set) Update(f Form) error {
	i := s.indexOf(f.ID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, f.ID)
	}
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return ErrInvalidName
	}
	if s.nameTaken(f.Name, f.ID) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, f.Name)
	}
	if f.EnergyType == "" {
		f.EnergyType = TargetAll
	}
	s.forms[i] = f
	return nil
}

// Delete removes the form and prunes it from the active set.
func (s *Set) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	s.forms = slices.Delete(s.forms, i, i+1)
	s.active = slices.DeleteFunc(s.active, func(a string) bool { return a == id })
	return nil
}

// Toggle flips the active state of a form and returns the new state.
func (s *Set) Toggle(id string) (bool, error) {
	active := !s.IsActive(id)
	if err := s.SetActive(id, active); err != nil {
		return false, err
	}
	return active, nil
}

// SetActive equips or unequips a form.
func (s *Set) SetActive(id string, active bool) error {
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	has := slices.Contains(s.active, id)
	switch {
	case active && !has:
		s.active = append(s.active, id)
	case !active && has:
		s.active = slices.DeleteFunc(s.active, func(a string) bool { return a == id })
	}
	return nil
}

// IsActive reports whether the form is equipped.
func (s *Set) IsActive(id string) bool {
	return slices.Contains(s.active, id)
}

// Aggregate combines the active forms over typeIDs.
func (s *Set) Aggregate(typeIDs []string) Aggregate {
	return ApplyActive(s.forms, s.active, typeIDs)
}

// Escalate applies buffs of the given forms permanently.
// Ids that no longer exist are ignored.
func (s *Set) Escalate(ids []string) {
	for _, id := range ids {
		i := s.indexOf(id)
		if i < 0 {
			continue
		}
		before := s.forms[i]
		s.forms[i].Escalate()
		if before.FormMultiplier != s.forms[i].FormMultiplier || before.PoolMaxMultiplier != s.forms[i].PoolMaxMultiplier {
			slog.Debug("form escalated",
				"form", before.Name,
				"formMultiplier", s.forms[i].FormMultiplier,
				"poolMaxMultiplier", s.forms[i].PoolMaxMultiplier)
		}
	}
}

func (s *Set) indexOf(id string) int {
	return slices.IndexFunc(s.forms, func(f Form) bool { return f.ID == id })
}

func (s *Set) nameTaken(name, exceptID string) bool {
	return slices.ContainsFunc(s.forms, func(f Form) bool {
		return f.ID != exceptID && strings.EqualFold(f.Name, name)
	})
}
