package synonym

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps a canonical term to its synonym phrases.
type Table map[string][]string

// DefaultTable returns the built-in medical synonym table.
func DefaultTable() Table {
	return Table{
		"hypertension": {
			"high blood pressure", "elevated blood pressure", "elevated blood-pressure",
			"htn", "blood pressure high", "bp high", "elevated bp",
			"increased blood pressure", "increased bp",
		},
		"diabetes": {
			"diabetes mellitus", "dm", "diabetes type 2", "type 2 diabetes",
			"diabetes type 1", "type 1 diabetes", "diabetes mellitus type 2",
			"diabetes mellitus type 1", "diabetic",
		},
		"headache": {
			"cephalalgia", "cephalgia", "head pain", "migraine", "head ache",
			"cephalic pain", "cranial pain",
		},
		"fever": {
			"pyrexia", "febrile", "hyperthermia", "elevated temperature",
			"high temperature", "febrile illness", "febrile episode",
		},
		"nausea": {
			"queasiness", "sick to stomach", "upset stomach", "stomach upset",
			"feeling sick", "nauseous", "nauseated",
		},
		"vomiting": {
			"emesis", "throwing up", "puking", "vomitus", "regurgitation",
			"nausea and vomiting", "n/v",
		},
		"fatigue": {
			"tiredness", "exhaustion", "weariness", "lethargy", "lack of energy",
			"low energy", "weakness",
		},
		"pain": {
			"ache", "discomfort", "soreness", "tenderness", "hurting", "painful",
			"suffering",
		},
		"swelling": {
			"edema", "inflammation", "swollen", "puffiness",
		},
		"infection": {
			"bacterial infection", "viral infection", "fungal infection",
			"infectious disease", "septic", "sepsis", "contagious disease",
		},
		"allergy": {
			"allergies", "allergic", "allergic reaction", "allergic rhinitis",
			"hay fever", "seasonal allergies", "pollen allergy",
		},
	}
}

// LoadTable reads a table from a YAML file mapping each term to a list of
// synonyms:
//
//	hypertension:
//	  - high blood pressure
//	  - htn
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonym table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML synonym table.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that the table is non-empty and has no blank terms.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: table is empty", ErrInvalidTable)
	}
	for term, synonyms := range t {
		if strings.TrimSpace(term) == "" {
			return fmt.Errorf("%w: blank term", ErrInvalidTable)
		}
		for _, s := range synonyms {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: blank synonym for %q", ErrInvalidTable, term)
			}
		}
	}
	return nil
}

// lookup builds the symmetric closure of the table: every member of a
// cluster maps to every other member. Keys and members are lowercased.
func (t Table) lookup() map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	add := func(key, value string) {
		if key == value {
			return
		}
		set, ok := out[key]
		if !ok {
			set = make(map[string]struct{})
			out[key] = set
		}
		set[value] = struct{}{}
	}

	for term, synonyms := range t {
		term = normalize(term)
		members := make([]string, 0, len(synonyms))
		for _, s := range synonyms {
			members = append(members, normalize(s))
		}
		for _, s := range members {
			add(term, s)
			add(s, term)
			for _, other := range members {
				add(s, other)
			}
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
