package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachment(t *testing.T) {
	var a Attachment
	require.NoError(t, a.Add(
		[]int{2, 0, 2}, []string{"nsubj", "root", "punct"},
		[]int{2, 0, 2}, []string{"nsubj", "root", "punct"}))
	require.NoError(t, a.Add(
		[]int{2, 0, 2, 2}, []string{"det", "root", "dobj", "punct"},
		[]int{2, 0, 4, 2}, []string{"amod", "root", "dobj", "punct"}))

	assert.Equal(t, 7, a.Tokens)
	assert.InDelta(t, 6.0/7, a.UAS(), 1e-9)
	assert.InDelta(t, 5.0/7, a.LAS(), 1e-9)
	assert.InDelta(t, 0.5, a.ExactMatch(), 1e-9)
	assert.Equal(t, map[string]int{"label": 1, "head": 1}, a.Errors.ByType())
	assert.Contains(t, a.Errors[0].String(), "sentence 1 token 1")

	assert.Error(t, a.Add([]int{1}, []string{"root"}, nil, nil))
}

func TestEmpty(t *testing.T) {
	var a Attachment
	assert.Equal(t, 0.0, a.UAS())
	assert.Equal(t, 0.0, a.ExactMatch())
}
