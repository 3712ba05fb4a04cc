package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShape(t *testing.T) {
	cases := map[string]string{
		"Stefflon":  "Xxxxx",
		"BBC":       "XXX",
		"2007":      "dddd",
		"hip-hop":   "xxx-xxx",
		"Steff's":   "Xxxxx'x",
		"XXL":       "XXX",
		"greatness": "xxxx",
	}
	for in, expected := range cases {
		assert.Equal(t, expected, Shape(in), "shape of %q", in)
	}
}

func TestPrefixSuffix(t *testing.T) {
	assert.Equal(t, "gre", Prefix("greatness", 3))
	assert.Equal(t, "ess", Suffix("greatness", 3))
	assert.Equal(t, "'s", Suffix("'s", 3))
	assert.Equal(t, "Me”", Suffix("Me”", 3))
	assert.Equal(t, "", Prefix("", 2))
}

func TestIsPunctuation(t *testing.T) {
	assert.True(t, IsPunctuation("."))
	assert.True(t, IsPunctuation(","))
	assert.True(t, IsPunctuation("“"))
	assert.False(t, IsPunctuation("'s"))
	assert.False(t, IsPunctuation(""))
}
