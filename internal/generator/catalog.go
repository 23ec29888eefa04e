package generator

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var embedded embed.FS

// Node is one entry of a catalog tree. A node without topics is a leaf and
// its Parameters are the defaults for the generator registered at its path.
type Node struct {
	Name       string         `yaml:"name"`
	Topics     []Node         `yaml:"topics"`
	Parameters map[string]any `yaml:"parameters"`
}

// IsLeaf reports whether the node names a generator.
func (n Node) IsLeaf() bool { return len(n.Topics) == 0 }

// EmbeddedCatalog returns the catalog compiled into the binary.
func EmbeddedCatalog() ([]Node, error) {
	sub, err := fs.Sub(embedded, "catalog")
	if err != nil {
		return nil, err
	}
	return LoadCatalog(sub)
}

// LoadCatalogDir reads every subject tree under dir.
func LoadCatalogDir(dir string) ([]Node, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("catalog dir: %w", err)
	}
	return LoadCatalog(os.DirFS(dir))
}

// LoadCatalog reads one subject tree per YAML file in fsys, in lexical file
// order. Files that do not parse, or carry no root name, are skipped.
func LoadCatalog(fsys fs.FS) ([]Node, error) {
	var roots []Node
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		var root Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			slog.Warn("skipping invalid catalog YAML", "path", p, "error", err)
			return nil
		}
		if strings.TrimSpace(root.Name) == "" {
			return nil // not a catalog file
		}
		roots = append(roots, root)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return roots, nil
}
