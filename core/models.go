package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// LabelID returns the ID used to key a drug's label mapping.
// Drug names are compared case-insensitively.
func LabelID(drug string) ID {
	return IDFromContent(strings.ToLower(strings.TrimSpace(drug)))
}

// SectionKind identifies which label section to extract.
type SectionKind int

const (
	// SectionIndications is the "Indications and Usage" section.
	SectionIndications SectionKind = iota + 1
	// SectionDirections is the "Dosage and Administration" section.
	SectionDirections
)

// LOINC section codes used by SPL documents.
const (
	IndicationsCode = "34067-9"
	DirectionsCode  = "34068-7"
)

// Code returns the controlled section code for the kind.
func (k SectionKind) Code() string {
	switch k {
	case SectionIndications:
		return IndicationsCode
	case SectionDirections:
		return DirectionsCode
	}
	return ""
}

// Title returns the canonical lowercase section title.
func (k SectionKind) Title() string {
	switch k {
	case SectionIndications:
		return "indications and usage"
	case SectionDirections:
		return "dosage and administration"
	}
	return ""
}

func (k SectionKind) String() string {
	switch k {
	case SectionIndications:
		return "indications"
	case SectionDirections:
		return "directions"
	}
	return "unknown"
}

// ParseSectionKind converts "indications" or "directions" to a SectionKind.
func ParseSectionKind(s string) (SectionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indications", "indication":
		return SectionIndications, nil
	case "directions", "direction":
		return SectionDirections, nil
	}
	return 0, ErrInvalidSectionKind
}

// ExtractedText is an ordered list of unique text fragments.
type ExtractedText []string

// Empty reports whether no fragments were extracted.
func (t ExtractedText) Empty() bool {
	return len(t) == 0
}

// Joined returns the fragments separated by newlines.
func (t ExtractedText) Joined() string {
	return strings.Join(t, "\n")
}

// Dedup returns the fragments with exact duplicates removed, keeping
// the first occurrence of each.
func Dedup(fragments []string) ExtractedText {
	if len(fragments) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fragments))
	out := make(ExtractedText, 0, len(fragments))
	for _, f := range fragments {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// CatalogEntry is one diagnosis code from the ICD-10 catalog.
type CatalogEntry struct {
	Code        string
	Description string
	Category    string
}

// MatchResult is a catalog entry scored against an indication.
type MatchResult struct {
	Code        string
	Description string
	Category    string
	Score       float64
}

// IndicationMapping pairs indication text with its ranked catalog matches.
type IndicationMapping struct {
	OriginalText string
	Matches      []MatchResult
}

// LabelMapping is the cached outcome of mapping one drug's label.
type LabelMapping struct {
	Id          ID
	Drug        string
	SetID       string
	Title       string
	Indications ExtractedText
	Directions  string
	Mapping     *IndicationMapping // nil when no catalog entry cleared the threshold
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SPLSummary describes one Structured Product Label returned by a search.
type SPLSummary struct {
	SetID         string
	Title         string
	PublishedDate string
}

// Checkpoint records a completed catalog load.
type Checkpoint struct {
	Name      string
	Source    string
	Count     int
	UpdatedAt time.Time
}
