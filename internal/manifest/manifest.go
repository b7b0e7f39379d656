package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/KaramelBytes/raceda/internal/dataset"
	"github.com/KaramelBytes/raceda/internal/utils"
)

// FileName is the manifest file written into every output directory.
const FileName = "manifest.json"

// Manifest describes one pipeline run and the artifacts it produced.
type Manifest struct {
	ID        string               `json:"id"`
	Input     string               `json:"input"`
	Checksum  string               `json:"checksum"`
	Rows      int                  `json:"rows"`
	Cols      int                  `json:"cols"`
	Clean     *dataset.CleanReport `json:"clean,omitempty"`
	Empty     []string             `json:"empty_aggregates,omitempty"`
	Artifacts []Artifact           `json:"artifacts"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`

	// Not serialized: directory the manifest is saved into
	dir string
}

// Artifact is one file written by a run.
type Artifact struct {
	Name string `json:"name"`
	File string `json:"file"`
	Kind string `json:"kind"`
}

// New constructs an in-memory manifest for input. Call Save to persist.
func New(input, dir string) *Manifest {
	now := time.Now()
	return &Manifest{
		ID:        uuid.NewString(),
		Input:     input,
		CreatedAt: now,
		UpdatedAt: now,
		dir:       dir,
	}
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.dir = dir
	return &m, nil
}

// Dir returns the output directory.
func (m *Manifest) Dir() string { return m.dir }

// Path joins file onto the output directory.
func (m *Manifest) Path(file string) string { return filepath.Join(m.dir, file) }

// Fingerprint records the xxhash64 of the input file.
func (m *Manifest) Fingerprint() error {
	f, err := os.Open(m.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	sum, err := Checksum(f)
	if err != nil {
		return err
	}
	m.Checksum = sum
	return nil
}

// Checksum returns the hex xxhash64 of r.
func Checksum(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Add records an artifact, replacing an earlier entry with the same name.
func (m *Manifest) Add(name, file, kind string) {
	for i, a := range m.Artifacts {
		if a.Name == name {
			m.Artifacts[i] = Artifact{Name: name, File: file, Kind: kind}
			m.UpdatedAt = time.Now()
			return
		}
	}
	m.Artifacts = append(m.Artifacts, Artifact{Name: name, File: file, Kind: kind})
	m.UpdatedAt = time.Now()
}

// WriteArtifact streams fn into file inside the output directory and records it.
func (m *Manifest) WriteArtifact(name, file, kind string, fn func(io.Writer) error) error {
	if err := utils.EnsureDir(m.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	if err := utils.WriteFileWith(m.Path(file), fn); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	m.Add(name, file, kind)
	return nil
}

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("manifest output directory not set")
	}
	if err := utils.EnsureDir(m.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(FileName), data)
}
