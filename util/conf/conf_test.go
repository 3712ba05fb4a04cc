package conf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDefaults(t *testing.T) {
	c, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.NoError(t, c.Validate())
}

func TestReadOverlay(t *testing.T) {
	doc := `
iterations: 25
learning_rate: 0.5
seed: 42
average: false
output: /tmp/model
`
	c, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 25, c.Iterations)
	assert.Equal(t, 0.5, c.LearningRate)
	assert.Equal(t, int64(42), c.Seed)
	assert.False(t, c.Average)
	assert.Equal(t, "/tmp/model", c.Output)
	assert.Equal(t, DEFAULT_LANG, c.Lang)
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(strings.NewReader("iterations: [1, 2"))
	var confErr *ConfigurationError
	assert.True(t, errors.As(err, &confErr))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DEPTRAIN_ITERATIONS", "3")
	t.Setenv("DEPTRAIN_SEED", "7")
	c := Default()
	c.Output = "keep"
	require.NoError(t, c.FromEnv())
	assert.Equal(t, 3, c.Iterations)
	assert.Equal(t, int64(7), c.Seed)
	assert.Equal(t, "keep", c.Output)
	assert.Equal(t, DEFAULT_LEARNING_RATE, c.LearningRate)
}

func TestFromEnvBadValue(t *testing.T) {
	t.Setenv("DEPTRAIN_ITERATIONS", "ten")
	err := Default().FromEnv()
	var confErr *ConfigurationError
	assert.True(t, errors.As(err, &confErr))
}

func TestValidate(t *testing.T) {
	for _, iterations := range []int{0, -1} {
		c := Default()
		c.Iterations = iterations
		err := c.Validate()
		var confErr *ConfigurationError
		require.True(t, errors.As(err, &confErr), "iterations %d", iterations)
		assert.Equal(t, "iterations", confErr.Field)
	}

	c := Default()
	c.LearningRate = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.RedisKey = "model"
	assert.Error(t, c.Validate())
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("# labels\nnsubj\n\ndet\n  amod  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"nsubj", "det", "amod"}, lines.Values)
}

func TestValidateFields(t *testing.T) {
	for field, mutate := range map[string]func(*Config){
		"learning_rate": func(c *Config) { c.LearningRate = -1 },
		"decay":         func(c *Config) { c.Decay = -0.5 },
		"init_scale":    func(c *Config) { c.InitScale = -1 },
		"lang":          func(c *Config) { c.Lang = "" },
		"redis_key":     func(c *Config) { c.RedisKey = "model" },
	} {
		c := Default()
		mutate(c)
		var confErr *ConfigurationError
		require.True(t, errors.As(c.Validate(), &confErr), field)
		assert.Equal(t, field, confErr.Field)
		assert.Contains(t, confErr.Error(), field)
	}
}
