package store

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgalbraith/DepTrain/nlp/pipeline"
	"github.com/danielgalbraith/DepTrain/util/logging"
)

const (
	MODEL_FILE    = "model.gob"
	CHECKSUM_FILE = "model.md5"
)

var ErrChecksum = errors.New("model checksum mismatch")

// Store persists trained pipelines.
type Store interface {
	Save(ctx context.Context, p *pipeline.Pipeline) error
	Load(ctx context.Context) (*pipeline.Pipeline, error)
}

// Encode writes a gob snapshot of p to writer.
func Encode(writer io.Writer, p *pipeline.Pipeline) error {
	snapshot, err := p.Snapshot()
	if err != nil {
		return err
	}
	return gob.NewEncoder(writer).Encode(snapshot)
}

func Decode(reader io.Reader) (*pipeline.Pipeline, error) {
	snapshot := new(pipeline.Snapshot)
	if err := gob.NewDecoder(reader).Decode(snapshot); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	return pipeline.FromSnapshot(snapshot)
}

func checksum(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}

// Save writes p to dir, creating it if needed, along with an md5 checksum
// of the model file.
func Save(p *pipeline.Pipeline, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, MODEL_FILE), buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, CHECKSUM_FILE), []byte(checksum(buf.Bytes())+"\n"), 0o644); err != nil {
		return err
	}
	log := logging.NewLogger("store")
	log.Info().Str("dir", dir).Int("bytes", buf.Len()).Msg("saved model")
	return nil
}

// Load reads the pipeline saved in dir. The checksum is verified when
// present.
func Load(dir string) (*pipeline.Pipeline, error) {
	data, err := os.ReadFile(filepath.Join(dir, MODEL_FILE))
	if err != nil {
		return nil, err
	}
	expected, err := os.ReadFile(filepath.Join(dir, CHECKSUM_FILE))
	switch {
	case err == nil:
		if strings.TrimSpace(string(expected)) != checksum(data) {
			return nil, fmt.Errorf("%s: %w", dir, ErrChecksum)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

// DirStore is a Store over a model directory.
type DirStore struct {
	Dir string
}

var _ Store = &DirStore{}

func (s *DirStore) Save(ctx context.Context, p *pipeline.Pipeline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Save(p, s.Dir)
}

func (s *DirStore) Load(ctx context.Context) (*pipeline.Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.Dir)
}
