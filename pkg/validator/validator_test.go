package validator

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

func (c color) Valid() bool { return c == "red" || c == "blue" }

type paint struct {
	Name  string `json:"name" validate:"required,max=5"`
	Color color  `json:"color" validate:"omitempty,enum"`
	Note  string `validate:"omitempty,email"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func TestEnumTag(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Struct(paint{Name: "p", Color: "red"}))
	assert.NoError(t, v.Struct(paint{Name: "p"}))
	assert.Error(t, v.Struct(paint{Name: "p", Color: "green"}))
}

func TestMessage(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		name string
		in   paint
		want string
	}{
		{"required", paint{}, "name is required"},
		{"max", paint{Name: "toolong"}, "name must be at most 5 characters"},
		{"enum", paint{Name: "p", Color: "green"}, `color has invalid value "green"`},
		{"other tag without json name", paint{Name: "p", Note: "nope"}, "Note failed email validation"},
		{"several", paint{Color: "green"}, `name is required; color has invalid value "green"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestMessage_DecodeErrors(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	err := json.Unmarshal([]byte(`{"name": 5}`), &dst)
	assert.Equal(t, "name has the wrong type", Message(err))

	err = json.Unmarshal([]byte(`{"name":`), &dst)
	require.Error(t, err)

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		assert.Equal(t, "request body is not valid JSON", Message(err))
	}

	assert.Equal(t, "plain", Message(errors.New("plain")))
}

func TestMessage_EmptyBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	err := json.NewDecoder(strings.NewReader("")).Decode(&dst)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "request body is required", Message(err))
}
