package jsvs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPickPrecedence(t *testing.T) {
	assert.Equal(t, "cli", pickString("cli", ptr("local"), ptr("global")))
	assert.Equal(t, "local", pickString("", ptr("local"), ptr("global")))
	assert.Equal(t, "global", pickString("", nil, ptr("global")))
	assert.Equal(t, "", pickString("", ptr(""), nil))

	assert.Equal(t, 3, pickInt(3, ptr(4), ptr(5)))
	assert.Equal(t, 4, pickInt(0, ptr(4), ptr(5)))
	assert.Equal(t, int64(5), pickInt64(0, nil, ptr(int64(5))))

	assert.True(t, pickBool(true, ptr(false), nil))
	assert.False(t, pickBool(false, ptr(false), ptr(true)))
	assert.True(t, pickBool(false, nil, ptr(true)))
}

func TestPickDuration(t *testing.T) {
	d, err := pickDuration(2*time.Second, ptr("bad"), nil)
	require.NoError(t, err, "config is not parsed when the flag is set")
	assert.Equal(t, 2*time.Second, d)

	d, err = pickDuration(0, nil, ptr("750ms"))
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, d)

	d, err = pickDuration(0, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = pickDuration(0, ptr("soon"), nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, newLogger(false))
	assert.NotNil(t, newLogger(true))
}
