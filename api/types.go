package api

import (
	"time"

	"github.com/poiesic/labelmap/core"
)

// CodeResponse is one ranked catalog match.
type CodeResponse struct {
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	Category        string  `json:"category,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// IndicationResponse is the indication text of a label and its codes.
type IndicationResponse struct {
	OriginalText string         `json:"original_text"`
	Fragments    []string       `json:"fragments"`
	ICD10Codes   []CodeResponse `json:"icd10_codes"`
}

// LabelResponse is the mapping for one drug.
type LabelResponse struct {
	Drug       string              `json:"drug"`
	SetID      string              `json:"set_id"`
	Title      string              `json:"title,omitempty"`
	Indication *IndicationResponse `json:"indication"`
	Directions *string             `json:"directions"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// SPLResponse is one search hit.
type SPLResponse struct {
	SetID         string `json:"set_id"`
	DrugLabel     string `json:"drug_label,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
}

// ExtractResponse holds the fragments extracted from a posted document.
type ExtractResponse struct {
	Kind      string   `json:"kind"`
	Fragments []string `json:"fragments"`
}

// MatchRequest is the body of POST /match. Omitted fields take the
// mapping defaults.
type MatchRequest struct {
	Text       string   `json:"text"`
	Threshold  *float64 `json:"threshold,omitempty"`
	MaxMatches *int     `json:"max_matches,omitempty"`
}

// MatchResponse holds ranked matches, best first.
type MatchResponse struct {
	Matches []CodeResponse `json:"matches"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toCodes(results []core.MatchResult) []CodeResponse {
	codes := make([]CodeResponse, 0, len(results))
	for _, r := range results {
		codes = append(codes, CodeResponse{
			Code:            r.Code,
			Description:     r.Description,
			Category:        r.Category,
			ConfidenceScore: r.Score,
		})
	}
	return codes
}

func toLabel(l *core.LabelMapping) LabelResponse {
	resp := LabelResponse{
		Drug:      l.Drug,
		SetID:     l.SetID,
		Title:     l.Title,
		UpdatedAt: l.UpdatedAt,
	}

	if !l.Indications.Empty() {
		ind := &IndicationResponse{
			OriginalText: l.Indications.Joined(),
			Fragments:    l.Indications,
			ICD10Codes:   []CodeResponse{},
		}
		if l.Mapping != nil {
			ind.OriginalText = l.Mapping.OriginalText
			ind.ICD10Codes = toCodes(l.Mapping.Matches)
		}
		resp.Indication = ind
	}

	if l.Directions != "" {
		d := l.Directions
		resp.Directions = &d
	}
	return resp
}
