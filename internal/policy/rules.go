package policy

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

// Rules configures the policy layer: which fields are "core" for the
// low-confidence gate, the accepted terrain taxonomy, and the
// configuration_scope keywords that trigger a scope disclosure.
type Rules struct {
	CoreFields    []string `yaml:"core_fields"`
	Terrains      []string `yaml:"terrains"`
	ScopeKeywords []string `yaml:"scope_keywords"`
}

// DefaultRules returns the compiled-in rules used when no rules file is
// configured.
func DefaultRules() Rules {
	return Rules{
		CoreFields: []string{
			model.FieldWeight,
			model.FieldFoldedDims,
			model.FieldMaxChildLb,
		},
		Terrains: []string{
			model.TerrainSmooth,
			model.TerrainUrban,
			model.TerrainLightUneven,
			model.TerrainAllTerrain,
			model.TerrainJogging,
		},
		ScopeKeywords: []string{"excludes", "separate"},
	}
}

// LoadRules reads policy rules from a YAML file. Missing sections fall back
// to the compiled defaults so a partial file stays valid.
func LoadRules(path string) (Rules, error) {
	defaults := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, eris.Wrapf(err, "policy: read rules %s", path)
	}

	var wrapper struct {
		Policy Rules `yaml:"policy"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return defaults, eris.Wrap(err, "policy: parse rules")
	}

	r := wrapper.Policy
	if len(r.CoreFields) == 0 {
		r.CoreFields = defaults.CoreFields
	}
	if len(r.Terrains) == 0 {
		r.Terrains = defaults.Terrains
	}
	if len(r.ScopeKeywords) == 0 {
		r.ScopeKeywords = defaults.ScopeKeywords
	}
	return r, nil
}

// KnownTerrain reports whether t is part of the configured taxonomy.
func (r Rules) KnownTerrain(t string) bool {
	for _, k := range r.Terrains {
		if k == t {
			return true
		}
	}
	return false
}
