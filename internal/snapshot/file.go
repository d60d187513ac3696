package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// envelope is the on-disk form: the encoded snapshot plus its checksum.
type envelope struct {
	Checksum string `yaml:"checksum"`
	Payload  string `yaml:"payload"`
}

// Seal encodes s and wraps it with its checksum.
func Seal(s *Snapshot) ([]byte, error) {
	payload, err := Encode(s)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(&envelope{Checksum: Checksum(payload), Payload: string(payload)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot envelope: %w", err)
	}
	return data, nil
}

// Open verifies and decodes sealed data.
func Open(data []byte) (*Snapshot, error) {
	var env envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot envelope: %w", err)
	}
	if env.Payload == "" {
		return nil, fmt.Errorf("snapshot envelope has no payload")
	}
	return Verify([]byte(env.Payload), env.Checksum)
}

// SaveFile writes a sealed snapshot to path, replacing any existing file.
func SaveFile(path string, s *Snapshot) error {
	data, err := Seal(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}

// LoadFile reads and verifies a sealed snapshot.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}
	s, err := Open(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// FileExists checks if a save file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
