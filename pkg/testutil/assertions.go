package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	require.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// AssertScore compares two scores to within 1e-9.
func AssertScore(t *testing.T, expected, actual float64, msgAndArgs ...interface{}) {
	t.Helper()
	if math.IsNaN(expected) {
		assert.True(t, math.IsNaN(actual), msgAndArgs...)
		return
	}
	assert.InDelta(t, expected, actual, 1e-9, msgAndArgs...)
}
