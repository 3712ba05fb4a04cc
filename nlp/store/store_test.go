package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgalbraith/DepTrain/nlp/pipeline"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const text = "Stefflon Don is on the periphery of global greatness. Now, she seems ready."

func trained(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	examples := []pipeline.Example{
		{
			Text:  "Stefflon Don is on the periphery of global greatness.",
			Deps:  []string{"compound", "nsubj", "cop", "case", "det", "root", "case", "amod", "nmod", "punct"},
			Heads: []int{2, 6, 6, 6, 6, 0, 9, 9, 6, 6},
		},
	}
	parser, err := pipeline.NewParser(nil, 3, 0.01)
	require.NoError(t, err)
	require.NoError(t, parser.AddLabels(examples))
	p := pipeline.Blank("en")
	require.NoError(t, p.Add(parser))
	_, err = p.Train(context.Background(), examples, pipeline.TrainOptions{Iterations: 3, LearningRate: 1, Seed: 3, InitScale: 0.01})
	require.NoError(t, err)
	return p
}

func assertSameParse(t *testing.T, want, got *pipeline.Pipeline) {
	t.Helper()
	wantDoc, err := want.Run(text)
	require.NoError(t, err)
	gotDoc, err := got.Run(text)
	require.NoError(t, err)
	if diff := cmp.Diff(wantDoc.Tokens, gotDoc.Tokens); diff != "" {
		t.Errorf("loaded pipeline parses differently (-want +got):\n%s", diff)
	}
}

func TestSaveLoad(t *testing.T) {
	p := trained(t)
	dir := filepath.Join(t.TempDir(), "nested", "model")
	require.NoError(t, Save(p, dir))
	assert.FileExists(t, filepath.Join(dir, MODEL_FILE))
	assert.FileExists(t, filepath.Join(dir, CHECKSUM_FILE))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, p.Names(), loaded.Names())
	assertSameParse(t, p, loaded)
}

func TestLoadChecksum(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(trained(t), dir))
	modelFile := filepath.Join(dir, MODEL_FILE)
	data, err := os.ReadFile(modelFile)
	require.NoError(t, err)
	data[len(data)/2] ^= 0xff
	require.NoError(t, os.WriteFile(modelFile, data, 0o644))
	_, err = Load(dir)
	assert.True(t, errors.Is(err, ErrChecksum), "%v", err)

	// without a checksum the model is decoded as is
	require.NoError(t, os.Remove(filepath.Join(dir, CHECKSUM_FILE)))
	require.NoError(t, os.WriteFile(modelFile, data[:len(data)/2], 0o644))
	_, err = Load(dir)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrChecksum))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nothing"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDirStore(t *testing.T) {
	p := trained(t)
	s := &DirStore{Dir: t.TempDir()}
	require.NoError(t, s.Save(context.Background(), p))
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assertSameParse(t, p, loaded)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Save(ctx, p))
}

func TestEncodeDecode(t *testing.T) {
	p := trained(t)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, p))
	loaded, err := Decode(&buf)
	require.NoError(t, err)
	assertSameParse(t, p, loaded)

	_, err = Decode(bytes.NewReader([]byte("not a model")))
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("DEPTRAIN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DEPTRAIN_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s := NewRedisStore(addr, "deptrain:test:"+uuid.New().String())
	defer s.Close()
	defer s.Delete(ctx)

	_, err := s.Load(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	p := trained(t)
	require.NoError(t, s.Save(ctx, p))
	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assertSameParse(t, p, loaded)
}
