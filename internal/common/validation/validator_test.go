package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Project string   `json:"project" validate:"required,slug"`
	Title   string   `json:"title" validate:"required,min=3"`
	Labels  []string `json:"labels" validate:"dive,label"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	assert.Empty(t, v.Validate(&sampleRequest{Project: "core-api", Title: "Crash on save", Labels: []string{"bug", "p:high"}}))

	errs := v.Validate(&sampleRequest{Project: "Core API", Title: "x", Labels: []string{"Not Valid"}})
	require.Len(t, errs, 3)

	fields := Fields(errs)
	assert.Equal(t, "slug", fields["sampleRequest.Project"])
	assert.Equal(t, "min", fields["sampleRequest.Title"])
	assert.Equal(t, "label", fields["sampleRequest.Labels[0]"])
}

func TestJoin(t *testing.T) {
	errs := []Error{
		{FailedField: "title", Tag: "required"},
		{FailedField: "project", Tag: "slug"},
	}
	assert.Equal(t, "The 'title' format is invalid (required) and The 'project' format is invalid (slug)",
		Join(errs, "The '%s' format is invalid (%s)"))
}
