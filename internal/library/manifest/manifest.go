package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultName is the manifest file looked up at the root of a content tree.
const DefaultName = "manifest.yaml"

// Manifest lists every content document of a library, in registration
// order. It is the only way a document becomes part of the store.
type Manifest struct {
	Library   string        `yaml:"library"`
	Version   int           `yaml:"version"`
	Documents []DocumentRef `yaml:"documents"`
}

type DocumentRef struct {
	Path    string `yaml:"path"`
	Enabled *bool  `yaml:"enabled"`
	Note    string `yaml:"note"`
}

func (d DocumentRef) IsEnabled() bool { return d.Enabled == nil || *d.Enabled }

// Parse decodes and checks a manifest. Paths must be relative, slash
// separated and listed once.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Documents) == 0 {
		return nil, errors.New("manifest lists no documents")
	}
	seen := make(map[string]bool, len(m.Documents))
	for i := range m.Documents {
		p := strings.TrimSpace(m.Documents[i].Path)
		if p == "" {
			return nil, fmt.Errorf("manifest documents[%d]: empty path", i)
		}
		p = path.Clean(p)
		if !fs.ValidPath(p) {
			return nil, fmt.Errorf("manifest documents[%d]: invalid path %q", i, m.Documents[i].Path)
		}
		if seen[p] {
			return nil, fmt.Errorf("manifest documents[%d]: %q listed twice", i, p)
		}
		seen[p] = true
		m.Documents[i].Path = p
	}
	return &m, nil
}

// Load reads and parses the manifest called name from fsys.
func Load(fsys fs.FS, name string) (*Manifest, error) {
	if name == "" {
		name = DefaultName
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Enabled returns the document paths that take part in a build.
func (m *Manifest) Enabled() []string {
	out := make([]string, 0, len(m.Documents))
	for _, d := range m.Documents {
		if d.IsEnabled() {
			out = append(out, d.Path)
		}
	}
	return out
}
