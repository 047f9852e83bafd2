package intake

import (
	"sort"

	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/underwriting/policy"
)

// DefaultProfile is used when a job names no policy profile.
const DefaultProfile = "default"

// Registry holds one orchestrator per configured policy profile.
type Registry struct {
	profiles map[string]*Orchestrator
}

// NewRegistry builds an orchestrator for every profile. A "default" profile is
// added from policy.Default when the map has none.
func NewRegistry(policies map[string]policy.Policy) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Orchestrator, len(policies)+1)}
	if _, ok := policies[DefaultProfile]; !ok {
		if err := r.add(DefaultProfile, policy.Default()); err != nil {
			return nil, err
		}
	}
	for name, p := range policies {
		if err := r.add(name, p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(name string, p policy.Policy) error {
	p = p.WithDefaults()
	p.Name = name
	if err := p.Validate(); err != nil {
		return err
	}
	o, err := New(p)
	if err != nil {
		return err
	}
	r.profiles[name] = o
	return nil
}

// Get returns the orchestrator for a profile; an empty name selects the default.
func (r *Registry) Get(profile string) (*Orchestrator, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	o, ok := r.profiles[profile]
	if !ok {
		return nil, apperrors.NewUnknownPolicyProfileError(profile)
	}
	return o, nil
}

// Profiles lists the configured profile names in order.
func (r *Registry) Profiles() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
