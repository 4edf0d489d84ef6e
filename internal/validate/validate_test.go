package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RebotePadel/GameHome/internal/apperror"
)

type tagBody struct {
	Name  string `json:"name" validate:"required,min=2"`
	Color string `json:"color" validate:"required,hexrgb"`
}

type patchBody struct {
	Name  *string `json:"name" validate:"omitnil,min=2"`
	Order *int    `json:"order" validate:"omitnil,gte=0"`
}

type listBody struct {
	TagIDs []string `json:"tagIds" validate:"min=1,dive,required"`
}

func ptr[T any](v T) *T { return &v }

func details(t *testing.T, err error) []apperror.FieldError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr.Details
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(tagBody{Name: "RH", Color: "#f59e0b"}))
	assert.NoError(t, v.Struct(patchBody{}))
	assert.NoError(t, v.Struct(listBody{TagIDs: []string{"tag-1"}}))
}

func TestStruct_HexColor(t *testing.T) {
	v := New()

	tests := []struct {
		color string
		ok    bool
	}{
		{"#EF4444", true},
		{"#ef4444", true},
		{"#Ef44aB", true},
		{"EF4444", false},
		{"#EF444", false},
		{"#EF44444", false},
		{"#GG4444", false},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			err := v.Struct(tagBody{Name: "Sécurité", Color: tt.color})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			d := details(t, err)
			require.Len(t, d, 1)
			assert.Equal(t, "color", d[0].Field)
			assert.Equal(t, "hexrgb", d[0].Rule)
		})
	}
}

func TestStruct_ReportsEveryField(t *testing.T) {
	v := New()

	d := details(t, v.Struct(tagBody{Name: "R", Color: "red"}))

	require.Len(t, d, 2)
	assert.Equal(t, "name", d[0].Field)
	assert.Equal(t, "min", d[0].Rule)
	assert.Equal(t, "name must be at least 2 characters", d[0].Message)
	assert.Equal(t, "color", d[1].Field)
}

func TestStruct_NameLengthCountsRunes(t *testing.T) {
	v := New()
	// "Él" is two runes but three bytes.
	assert.NoError(t, v.Struct(tagBody{Name: "Él", Color: "#000000"}))
	assert.Error(t, v.Struct(tagBody{Name: "É", Color: "#000000"}))
}

func TestStruct_OptionalFields(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(patchBody{Name: ptr("Marie"), Order: ptr(0)}))

	d := details(t, v.Struct(patchBody{Name: ptr("M"), Order: ptr(-1)}))
	require.Len(t, d, 2)
	assert.Equal(t, "order", d[1].Field)
	assert.Equal(t, "gte", d[1].Rule)
}

func TestStruct_SliceRules(t *testing.T) {
	v := New()

	d := details(t, v.Struct(listBody{}))
	require.Len(t, d, 1)
	assert.Equal(t, "tagIds", d[0].Field)
	assert.Equal(t, "tagIds must contain at least 1 item(s)", d[0].Message)

	d = details(t, v.Struct(listBody{TagIDs: []string{"tag-1", ""}}))
	require.Len(t, d, 1)
	assert.Equal(t, "tagIds[1]", d[0].Field)
}
