package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
)

// ReadManifest loads the manifest of a session directory
func ReadManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return Manifest{}, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, err
	}
	if manifest.Version <= 0 || manifest.Version > ManifestVersion {
		return Manifest{}, fmt.Errorf("unsupported manifest version %d", manifest.Version)
	}
	return manifest, nil
}

// ReadPasses decodes the pass log of a session directory
func ReadPasses(dir string) ([]PassRecord, error) {
	file, err := os.Open(filepath.Join(dir, PassesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var passes []PassRecord
	scanner := bufio.NewScanner(snappy.NewReader(file))
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record PassRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("pass %d: %w", len(passes)+1, err)
		}
		passes = append(passes, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return passes, nil
}
