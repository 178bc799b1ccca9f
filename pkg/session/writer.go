package session

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// File names inside a session directory
const (
	ManifestFile   = "manifest.json"
	CheckpointFile = "accum.bin.zst"
	PassesFile     = "passes.jsonl.sz"
	ImageFile      = "render.png"
)

// ManifestVersion is the manifest schema written by NewWriter
const ManifestVersion = 1

var nameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Manifest describes a render session so it can be inspected or resumed
type Manifest struct {
	Version        int    `json:"version"`
	CreatedAt      string `json:"created_at"`
	Scene          string `json:"scene"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	TargetSamples  int    `json:"target_samples"`
	Seed           int64  `json:"seed"`
	CheckpointPath string `json:"checkpoint_path"`
	PassesPath     string `json:"passes_path"`
}

// PassRecord is one line of the pass log
type PassRecord struct {
	Pass            int     `json:"pass"`
	CapturedAt      string  `json:"captured_at"`
	Samples         int     `json:"samples"`
	Dispatches      int     `json:"dispatches"`
	Paths           int     `json:"paths"`
	Sky             int     `json:"sky"`
	Debug           int     `json:"debug"`
	Absorbed        int     `json:"absorbed"`
	UnknownMaterial int     `json:"unknown_material"`
	AverageBounces  float64 `json:"average_bounces"`
	ElapsedMs       int64   `json:"elapsed_ms"`
}

// Writer records the passes and accumulation checkpoints of one render
type Writer struct {
	mu         sync.Mutex
	dir        string
	now        func() time.Time
	passFile   *os.File
	passStream *snappy.Writer
}

// NewWriter creates a session directory under root and writes its manifest.
// The manifest's Version, CreatedAt and file paths are filled in.
func NewWriter(root, name string, manifest Manifest, clock func() time.Time) (*Writer, Manifest, error) {
	if root == "" {
		return nil, Manifest{}, fmt.Errorf("session root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}

	cleaned := nameCleaner.ReplaceAllString(name, "")
	if cleaned == "" {
		cleaned = "render"
	}
	created := clock().UTC()
	path := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, Manifest{}, err
	}

	manifest.Version = ManifestVersion
	manifest.CreatedAt = created.Format(time.RFC3339Nano)
	manifest.CheckpointPath = CheckpointFile
	manifest.PassesPath = PassesFile

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, Manifest{}, err
	}
	if err := os.WriteFile(filepath.Join(path, ManifestFile), append(data, '\n'), 0o644); err != nil {
		return nil, Manifest{}, err
	}

	passFile, err := os.Create(filepath.Join(path, PassesFile))
	if err != nil {
		return nil, Manifest{}, err
	}

	return &Writer{
		dir:        path,
		now:        clock,
		passFile:   passFile,
		passStream: snappy.NewBufferedWriter(passFile),
	}, manifest, nil
}

// Directory returns the session directory
func (w *Writer) Directory() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// AppendPass writes one pass to the compressed pass log
func (w *Writer) AppendPass(pass renderer.PassResult) error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}
	stats := pass.Stats
	record := PassRecord{
		Pass:            pass.PassNumber,
		CapturedAt:      w.now().UTC().Format(time.RFC3339Nano),
		Samples:         stats.SamplesPerPixel,
		Dispatches:      stats.Dispatches,
		Paths:           stats.Paths.Paths,
		Sky:             stats.Paths.Sky,
		Debug:           stats.Paths.Debug,
		Absorbed:        stats.Paths.Absorbed,
		UnknownMaterial: stats.Paths.UnknownMaterial,
		AverageBounces:  stats.Paths.AverageBounces(),
		ElapsedMs:       stats.Elapsed.Milliseconds(),
	}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.passStream.Write(append(line, '\n')); err != nil {
		return err
	}
	return w.passStream.Flush()
}

// Checkpoint replaces the accumulation checkpoint with the current buffer.
// The file is written beside the old one and renamed into place.
func (w *Writer) Checkpoint(acc *renderer.Accumulator) error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	final := filepath.Join(w.dir, CheckpointFile)
	tmp := final + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := WriteCheckpoint(file, acc); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, final)
}

// SaveImage writes img as the session's PNG
func (w *Writer) SaveImage(img image.Image) error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}
	file, err := os.Create(filepath.Join(w.dir, ImageFile))
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Close flushes the pass log and releases file handles
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	if err := w.passStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.passFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
