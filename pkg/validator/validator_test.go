package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatInput struct {
	Text  string `json:"text" validate:"required,max=10"`
	Level string `json:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO"`
	Skip  string `json:"-"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(chatInput{Text: "hi"})
	assert.True(t, ok)
	assert.Empty(t, errs)

	errs, ok = v.Validate(chatInput{Text: "", Level: "TRACE"})
	require.False(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "text", errs[0].Field)
	assert.Equal(t, "REQUIRED", errs[0].Code)
	assert.Equal(t, "text is required", errs[0].Message)
	assert.Equal(t, "level", errs[1].Field)
	assert.Equal(t, "ONEOF", errs[1].Code)

	errs, ok = v.Validate(chatInput{Text: "this is far too long"})
	require.False(t, ok)
	assert.Equal(t, "text must not exceed 10", errs[0].Message)
	assert.EqualError(t, Join(errs), "text must not exceed 10")
}

func TestJoinEmpty(t *testing.T) {
	assert.NoError(t, Join(nil))
}
