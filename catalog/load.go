package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML catalog file. Sections the file leaves out keep their
// values from Default. Unknown fields are rejected.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}

	return c, nil
}

// file is the on-disk shape of a catalog. Build, case studies and entries
// replace the defaults wholesale when present; layout fields merge one by one.
type file struct {
	Build           *Build      `yaml:"build"`
	CaseStudies     []CaseStudy `yaml:"case_studies"`
	InferenceBinary string      `yaml:"inference_binary"`
	Layout          Layout      `yaml:"layout"`
	Entries         []Entry     `yaml:"entries"`
}

// Parse decodes a YAML catalog on top of Default and validates the result.
// An empty document yields Default.
func Parse(data []byte) (Catalog, error) {
	c := Default()
	f := file{Layout: c.Layout}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, fmt.Errorf("parse YAML: %w", err)
	}

	if f.Build != nil {
		c.Build = *f.Build
	}
	if f.CaseStudies != nil {
		c.CaseStudies = f.CaseStudies
	}
	if f.InferenceBinary != "" {
		c.InferenceBinary = f.InferenceBinary
	}
	if f.Entries != nil {
		c.Entries = f.Entries
	}

	c.Layout = f.Layout

	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}

	return c, nil
}

// UnmarshalYAML accepts either a bare identifier or an {id: ...} mapping.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.ID = node.Value
		return nil
	}

	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Value != "id" {
				return fmt.Errorf("line %d: field %s not found in type catalog.Entry",
					key.Line, key.Value)
			}
		}
	}

	type plain Entry

	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	*e = Entry(p)

	return nil
}
