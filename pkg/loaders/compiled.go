package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// CompiledVersion is the layout version written by CompileScene
const CompiledVersion = 1

// MaxCompiledBufferBytes bounds each storage buffer read from a compiled scene
const MaxCompiledBufferBytes = 64 << 20

var compiledMagic = [4]byte{'S', 'P', 'H', 'R'}

// ErrNotCompiledScene is returned when a stream does not start with the
// compiled scene header
var ErrNotCompiledScene = errors.New("not a compiled scene")

// compiledHeader precedes the two storage buffers inside the zstd stream
type compiledHeader struct {
	Magic        [4]byte
	Version      uint32
	LookFrom     [3]float32
	LookAt       [3]float32
	VUp          [3]float32
	Width        uint32
	Height       uint32
	Samples      uint32
	MaxBounces   uint32
	SpheresLen   uint32
	MaterialsLen uint32
}

// CompileScene writes the scene as a zstd stream holding the camera and the
// encoded sphere and material buffers. The scene is validated first.
func CompileScene(w io.Writer, s *scene.Scene) error {
	if err := s.Validate(); err != nil {
		return err
	}
	spheres, materials, err := scene.EncodeBuffers(s)
	if err != nil {
		return err
	}

	header := compiledHeader{
		Magic:        compiledMagic,
		Version:      CompiledVersion,
		LookFrom:     *array(s.Camera.LookFrom),
		LookAt:       *array(s.Camera.LookAt),
		VUp:          *array(s.Camera.VUp),
		Width:        uint32(s.Camera.Width),
		Height:       uint32(s.Camera.Height),
		Samples:      uint32(s.Camera.NumSamples),
		MaxBounces:   uint32(s.MaxBounces),
		SpheresLen:   uint32(len(spheres)),
		MaterialsLen: uint32(len(materials)),
	}

	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if err := binary.Write(encoder, binary.LittleEndian, header); err != nil {
		encoder.Close()
		return err
	}
	if _, err := encoder.Write(spheres); err != nil {
		encoder.Close()
		return err
	}
	if _, err := encoder.Write(materials); err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

// SaveCompiledScene compiles s into filename
func SaveCompiledScene(filename string, s *scene.Scene) error {
	if err := validateFilePath(filename, scene.CompiledExt); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := CompileScene(file, s); err != nil {
		file.Close()
		os.Remove(filename)
		return err
	}
	return file.Close()
}

// ReadCompiledScene decodes a stream written by CompileScene and validates
// the resulting scene
func ReadCompiledScene(r io.Reader) (*scene.Scene, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	var header compiledHeader
	if err := binary.Read(decoder, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotCompiledScene, err)
	}
	if header.Magic != compiledMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrNotCompiledScene, header.Magic[:])
	}
	if header.Version != CompiledVersion {
		return nil, fmt.Errorf("unsupported compiled scene version %d", header.Version)
	}

	spheresBuf, err := readBuffer(decoder, header.SpheresLen)
	if err != nil {
		return nil, fmt.Errorf("sphere buffer: %w", err)
	}
	materialsBuf, err := readBuffer(decoder, header.MaterialsLen)
	if err != nil {
		return nil, fmt.Errorf("material buffer: %w", err)
	}

	spheres, materials, err := scene.DecodeBuffers(spheresBuf, materialsBuf)
	if err != nil {
		return nil, err
	}

	s := scene.New(geometry.CameraConfig{
		LookFrom:   vec3(header.LookFrom),
		LookAt:     vec3(header.LookAt),
		VUp:        vec3(header.VUp),
		Width:      int(header.Width),
		Height:     int(header.Height),
		NumSamples: int(header.Samples),
	}, int(header.MaxBounces))
	s.Spheres = spheres
	s.Materials = materials

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// readBuffer reads n bytes of a storage buffer. Memory grows with the data
// actually present, so a corrupt length cannot force a large allocation.
func readBuffer(r io.Reader, n uint32) ([]byte, error) {
	if n > MaxCompiledBufferBytes {
		return nil, fmt.Errorf("%w: buffer length %d exceeds %d", ErrNotCompiledScene, n, MaxCompiledBufferBytes)
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		return nil, fmt.Errorf("truncated after %d of %d bytes: %w", buf.Len(), n, err)
	}
	return buf.Bytes(), nil
}

// LoadCompiledScene reads a compiled scene file
func LoadCompiledScene(filename string) (*scene.Scene, error) {
	if err := validateFilePath(filename, scene.CompiledExt); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open compiled scene: %w", err)
	}
	defer file.Close()

	return ReadCompiledScene(file)
}

// LoadScene resolves a scene id as listed by scene.ListAllScenes: a
// built-in name, or a json: or compiled: file scene found in dir
func LoadScene(id, dir string) (*scene.Scene, error) {
	files, err := scene.ListSceneFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID != id {
			continue
		}
		switch info.Type {
		case scene.TypeCompiled:
			return LoadCompiledScene(info.FilePath)
		default:
			return LoadSceneJSON(info.FilePath)
		}
	}
	return scene.NewBuiltin(id)
}
