package workflow

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/catalog.yaml
var defaultCatalogYAML []byte

// CatalogDocument is the on-disk shape of a catalog file.
type CatalogDocument struct {
	Stages []Stage `yaml:"stages"`
	Scales []Scale `yaml:"scales"`
}

// DefaultCatalog builds the catalog bundled with the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalogYAML(defaultCatalogYAML)
}

// ParseCatalogYAML decodes and validates a catalog document.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("workflow: catalog payload is empty")
	}
	var doc CatalogDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("workflow: decode catalog: %w", err)
	}
	return NewCatalog(doc.Stages, doc.Scales)
}

// LoadCatalogReader reads a catalog document from r.
func LoadCatalogReader(r io.Reader) (*Catalog, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("workflow: read catalog: %w", err)
	}
	return ParseCatalogYAML(content)
}

// LoadCatalogFile loads a catalog from path. An empty path yields the
// bundled default.
func LoadCatalogFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: open %s: %w", path, err)
	}
	defer file.Close()
	catalog, err := LoadCatalogReader(file)
	if err != nil {
		return nil, fmt.Errorf("workflow: %s: %w", path, err)
	}
	return catalog, nil
}
