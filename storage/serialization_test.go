package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/labelmap/core"
)

func TestMarshalUnmarshalCatalogEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry core.CatalogEntry
	}{
		{"full entry", core.CatalogEntry{Code: "J30.1", Description: "Allergic rhinitis due to pollen", Category: "Respiratory"}},
		{"no category", core.CatalogEntry{Code: "R51", Description: "Headache"}},
		{"unicode", core.CatalogEntry{Code: "L23.7", Description: "Dermatite allergique de contact due aux plantes", Category: "Peau"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalCatalogEntry(&tt.entry)
			require.NotEmpty(t, data)
			assert.Equal(t, recordVersion, data[0])

			decoded, err := UnmarshalCatalogEntry(data)
			require.NoError(t, err)
			assert.Equal(t, tt.entry, *decoded)
		})
	}
}

func TestMarshalUnmarshalLabelMapping(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 26, 53, 589000, time.UTC)

	tests := []struct {
		name  string
		label core.LabelMapping
	}{
		{
			name: "with mapping",
			label: core.LabelMapping{
				Id:          core.LabelID("Claritin"),
				Drug:        "Claritin",
				SetID:       "a1b2c3",
				Title:       "CLARITIN (loratadine) tablet",
				Indications: core.ExtractedText{"Temporarily relieves symptoms of hay fever.", "runny nose"},
				Directions:  "• adults: 1 tablet daily",
				Mapping: &core.IndicationMapping{
					OriginalText: "Temporarily relieves symptoms of hay fever. runny nose",
					Matches: []core.MatchResult{
						{Code: "J30.1", Description: "Allergic rhinitis due to pollen", Category: "Respiratory", Score: 0.7071},
						{Code: "J30.9", Description: "Allergic rhinitis, unspecified", Score: 0.5},
					},
				},
				CreatedAt: created,
				UpdatedAt: created.Add(time.Minute),
			},
		},
		{
			name: "without mapping",
			label: core.LabelMapping{
				Id:          core.LabelID("Saline"),
				Drug:        "Saline",
				Indications: core.ExtractedText{"for nasal dryness"},
			},
		},
		{
			name:  "empty",
			label: core.LabelMapping{Drug: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalLabelMapping(&tt.label)
			decoded, err := UnmarshalLabelMapping(data)
			require.NoError(t, err)
			assert.Equal(t, tt.label, *decoded)
		})
	}
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	checkpoint := core.Checkpoint{
		Name:      "catalog",
		Source:    "/data/icd10.csv",
		Count:     71704,
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 5, 6000, time.UTC),
	}

	decoded, err := UnmarshalCheckpoint(MarshalCheckpoint(&checkpoint))
	require.NoError(t, err)
	assert.Equal(t, checkpoint, *decoded)
}

func TestUnmarshal_Invalid(t *testing.T) {
	valid := MarshalLabelMapping(&core.LabelMapping{
		Drug:        "Aspirin",
		Indications: core.ExtractedText{"pain", "fever"},
	})

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"nil", nil, ErrTruncatedData},
		{"empty", []byte{}, ErrTruncatedData},
		{"unknown version", append([]byte{99}, valid[1:]...), ErrSerializationFailed},
		{"truncated", valid[:len(valid)-3], ErrSerializationFailed},
		{"trailing bytes", append(append([]byte{}, valid...), 0, 0), ErrSerializationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLabelMapping(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUnmarshal_HugeCount(t *testing.T) {
	// version, id 0, three empty strings, then a slice count far beyond the buffer
	data := []byte{recordVersion, 0, 0, 0, 0, 0xff, 0xff, 0x03}
	_, err := UnmarshalLabelMapping(data)
	assert.ErrorIs(t, err, ErrTruncatedData)
}
