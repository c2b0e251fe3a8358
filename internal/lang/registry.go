package lang

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownLanguage is returned when no profile is registered for a code.
var ErrUnknownLanguage = errors.New("unknown language")

// Registry is an immutable set of profiles keyed by language code.
type Registry struct {
	profiles map[string]*Profile
	codes    []string
}

// NewRegistry builds a registry from profiles. Codes must be unique.
func NewRegistry(profiles ...*Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Profile, len(profiles))}
	for _, p := range profiles {
		if p == nil {
			return nil, fmt.Errorf("nil profile")
		}
		if _, ok := r.profiles[p.code]; ok {
			return nil, fmt.Errorf("duplicate language %q", p.code)
		}
		r.profiles[p.code] = p
		r.codes = append(r.codes, p.code)
	}
	sort.Strings(r.codes)
	return r, nil
}

// With returns a new registry holding r's profiles plus the given ones.
// A profile with an existing code replaces the old one.
func (r *Registry) With(profiles ...*Profile) (*Registry, error) {
	merged := make([]*Profile, 0, len(r.codes)+len(profiles))
	override := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		if p == nil {
			return nil, fmt.Errorf("nil profile")
		}
		override[p.code] = struct{}{}
	}
	for _, code := range r.codes {
		if _, ok := override[code]; ok {
			continue
		}
		merged = append(merged, r.profiles[code])
	}
	merged = append(merged, profiles...)
	return NewRegistry(merged...)
}

// Lookup returns the profile registered for code.
func (r *Registry) Lookup(code string) (*Profile, error) {
	if p, ok := r.profiles[code]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownLanguage, code, strings.Join(r.codes, ", "))
}

// Codes returns the registered language codes, sorted.
func (r *Registry) Codes() []string {
	return append([]string(nil), r.codes...)
}
