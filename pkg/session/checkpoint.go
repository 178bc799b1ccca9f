package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// MaxCheckpointSide bounds the width and height read from a checkpoint
const MaxCheckpointSide = 16384

var checkpointMagic = [4]byte{'A', 'C', 'C', 'M'}

// ErrCheckpointMismatch is returned when a checkpoint does not fit the
// render it is applied to
var ErrCheckpointMismatch = errors.New("checkpoint does not match render")

type checkpointHeader struct {
	Magic   [4]byte
	Width   uint32
	Height  uint32
	Samples uint32
}

// Checkpoint is a decoded accumulation buffer: RGB sums and per-pixel sample
// counts in row-major RGBA order
type Checkpoint struct {
	Width   int
	Height  int
	Samples int
	Data    []float32
}

// WriteCheckpoint writes the accumulator as a zstd stream
func WriteCheckpoint(w io.Writer, acc *renderer.Accumulator) error {
	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}

	header := checkpointHeader{
		Magic:   checkpointMagic,
		Width:   uint32(acc.Width()),
		Height:  uint32(acc.Height()),
		Samples: uint32(acc.Samples()),
	}
	if err := binary.Write(encoder, binary.LittleEndian, header); err != nil {
		encoder.Close()
		return err
	}
	if err := binary.Write(encoder, binary.LittleEndian, acc.Snapshot()); err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

// ReadCheckpoint decodes a stream written by WriteCheckpoint
func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	var header checkpointHeader
	if err := binary.Read(decoder, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("checkpoint header: %w", err)
	}
	if header.Magic != checkpointMagic {
		return nil, fmt.Errorf("checkpoint: bad magic %q", header.Magic[:])
	}

	if header.Width == 0 || header.Height == 0 ||
		header.Width > MaxCheckpointSide || header.Height > MaxCheckpointSide {
		return nil, fmt.Errorf("checkpoint: invalid size %dx%d", header.Width, header.Height)
	}

	// Buffer the raw floats first so a corrupt size fails on the short stream
	// before the float slice is allocated
	floats := int64(header.Width) * int64(header.Height) * 4
	var raw bytes.Buffer
	if _, err := io.CopyN(&raw, decoder, floats*4); err != nil {
		return nil, fmt.Errorf("checkpoint data: %w", err)
	}
	data := make([]float32, floats)
	if err := binary.Read(&raw, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("checkpoint data: %w", err)
	}

	return &Checkpoint{
		Width:   int(header.Width),
		Height:  int(header.Height),
		Samples: int(header.Samples),
		Data:    data,
	}, nil
}

// LoadCheckpoint reads the checkpoint of a session directory
func LoadCheckpoint(dir string) (*Checkpoint, error) {
	file, err := os.Open(filepath.Join(dir, CheckpointFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCheckpoint(file)
}

// Apply resumes pr from the checkpoint. The resolution must match the
// render's camera and the sample count must not exceed its target.
func (c *Checkpoint) Apply(pr *renderer.ProgressiveRaytracer) error {
	camera := pr.Camera()
	if c.Width != camera.Width || c.Height != camera.Height {
		return fmt.Errorf("%w: checkpoint is %dx%d, render is %dx%d",
			ErrCheckpointMismatch, c.Width, c.Height, camera.Width, camera.Height)
	}
	if c.Samples > camera.NumSamples {
		return fmt.Errorf("%w: checkpoint has %d samples, render targets %d",
			ErrCheckpointMismatch, c.Samples, camera.NumSamples)
	}
	return pr.Resume(c.Data, c.Samples)
}
