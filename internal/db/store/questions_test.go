package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterParamsNormalizedReplacesNilDimensions(t *testing.T) {
	p := FilterQuestionIDsParams{ScopeValues: []string{"internal medicine"}}.normalized()

	// Nil slices would bind as SQL NULL, and cardinality(NULL::text[])
	// is NULL, so every dimension must reach the query as a real array.
	assert.NotNil(t, p.ScopeValues)
	assert.NotNil(t, p.ResourceValues)
	assert.NotNil(t, p.DisciplineValues)
	assert.NotNil(t, p.SystemValues)
	assert.NotNil(t, p.TypeValues)
	assert.Empty(t, p.ResourceValues)
	assert.Empty(t, p.DisciplineValues)
	assert.Empty(t, p.SystemValues)
	assert.Empty(t, p.TypeValues)
	assert.Equal(t, []string{"internal medicine"}, p.ScopeValues)
}

func TestFilterParamsNormalizedKeepsValues(t *testing.T) {
	in := FilterQuestionIDsParams{
		ScopeValues:      []string{"pediatrics"},
		ResourceValues:   []string{"uworld"},
		DisciplineValues: []string{"pathology"},
		SystemValues:     []string{"cardiology"},
		TypeValues:       []string{"step2"},
	}
	assert.Equal(t, in, in.normalized())
}
