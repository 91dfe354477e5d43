package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `{
  "meta": {"name": "Ada Lovelace", "headline": "Analyst", "contact": {"email": "ada@example.com"}},
  "summary": "Writes programs for engines that do not exist yet.",
  "experience": [{"company": "Analytical Engines", "title": "Programmer", "bullets": ["Note G"]}],
  "certifications": [{"name": "Mathematics", "url": "https://www.maths.example.co.uk/cert"}]
}`

func TestDecode(t *testing.T) {
	cv, err := Decode([]byte(sampleCV))
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", cv.Meta.Name)
	require.Len(t, cv.Experience, 1)
	assert.Equal(t, []string{"Note G"}, cv.Experience[0].Bullets)
	assert.Equal(t, "Experience", cv.Label("experience"))
}

func TestValidateMap(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid", doc: sampleCV},
		{name: "missing meta", doc: `{"experience": []}`, wantErr: true},
		{name: "empty name", doc: `{"meta": {"name": "", "headline": ""}, "experience": []}`, wantErr: true},
		{name: "role without title", doc: `{"meta": {"name": "A", "headline": ""}, "experience": [{"company": "X"}]}`, wantErr: true},
		{name: "wrong type", doc: `{"meta": {"name": "A", "headline": ""}, "experience": "lots"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(tt.doc), &m))
			err := ValidateMap(m)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCV)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"meta":`))
	assert.ErrorIs(t, err, ErrInvalidCV)
}

func TestLabel_Override(t *testing.T) {
	cv := &CV{Labels: map[string]string{"experience": "Berufserfahrung"}}
	assert.Equal(t, "Berufserfahrung", cv.Label("experience"))
	assert.Equal(t, "Skills", cv.Label("skills"))
}
