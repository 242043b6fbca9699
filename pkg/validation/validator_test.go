package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	To         string `form:"to" validate:"required,loosemail"`
	BodyFormat string `json:"body_format" validate:"omitempty,bodyformat"`
	Password   string `json:"password" validate:"omitempty,pwd"`
	DelayMS    int    `form:"delay_ms" validate:"lte=60000"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestRegister_Tags(t *testing.T) {
	t.Parallel()

	v := newValidator()
	require.NoError(t, v.Struct(sample{To: " ann@x.io ", BodyFormat: "text", Password: "12345678"}))

	err := v.Struct(sample{To: "ann", BodyFormat: "markdown", Password: "short", DelayMS: 70000})
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"to":          "must be a valid email address",
		"body_format": "must be one of: html, text",
		"password":    "must be at least 8 characters long",
		"delay_ms":    "must be less than or equal to 60000",
	}, ToDetails(err))
}

func TestToDetails_Required(t *testing.T) {
	t.Parallel()

	err := newValidator().Struct(sample{})
	assert.Equal(t, map[string]string{"to": "is required"}, ToDetails(err))
}

func TestToDetails_Payload(t *testing.T) {
	t.Parallel()

	var dst map[string]any
	err := json.Unmarshal([]byte(`{"to":`), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
