package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_EmptyIsNotZero(t *testing.T) {
	var zero Value
	assert.True(t, zero.IsEmpty())
	assert.Equal(t, Empty(), zero)

	v := Some(0)
	assert.False(t, v.IsEmpty())
	f, ok := v.Get()
	assert.True(t, ok)
	assert.Zero(t, f)
	assert.NotEqual(t, Empty(), v)
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "empty", v: Empty(), want: ""},
		{name: "zero", v: Some(0), want: "0"},
		{name: "integral", v: Some(3), want: "3"},
		{name: "fraction", v: Some(1.25), want: "1.25"},
		{name: "negative", v: Some(-16.5), want: "-16.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestValue_JSONNull(t *testing.T) {
	data, err := json.Marshal([]Value{Some(1.5), Empty()})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null]`, string(data))

	var back []Value
	require.NoError(t, json.Unmarshal([]byte(`[null, 2]`), &back))
	assert.Equal(t, []Value{Empty(), Some(2)}, back)
}
