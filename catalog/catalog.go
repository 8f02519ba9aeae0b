// Package catalog declares the experiments sketchbench drives: the build
// command, the case studies with their variants, and the ordered list of
// scalability benchmark models.
package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Variant is one configuration of a case study. An empty Flag runs the
// binary without arguments.
type Variant struct {
	Flag  string `yaml:"flag,omitempty" json:"flag,omitempty"`
	Label string `yaml:"label" json:"label"`
}

// CaseStudy is a named experiment whose variants run in declared order.
type CaseStudy struct {
	Name     string    `yaml:"name" json:"name"`
	Title    string    `yaml:"title,omitempty" json:"title,omitempty"`
	Binary   string    `yaml:"binary" json:"binary"`
	Variants []Variant `yaml:"variants" json:"variants"`
}

// Heading returns the text used in banners for this case study.
func (c CaseStudy) Heading() string {
	if c.Title != "" {
		return c.Title
	}

	return c.Name
}

// Entry identifies one benchmark model directory under Layout.BaseDir.
type Entry struct {
	ID string `yaml:"id" json:"id"`
}

// Layout names the benchmark root and the three files every benchmark
// directory contains.
type Layout struct {
	BaseDir          string `yaml:"base_dir" json:"base_dir"`
	ParametrizedFile string `yaml:"parametrized_file" json:"parametrized_file"`
	GoalFile         string `yaml:"goal_file" json:"goal_file"`
	AttractorsFile   string `yaml:"attractors_file" json:"attractors_file"`
}

// Paths are the derived locations of one benchmark's input files.
type Paths struct {
	Dir          string
	Parametrized string
	Goal         string
	Attractors   string
}

// Paths derives the canonical file paths for an entry. Paths are cleaned,
// so "./models" renders as "models".
func (l Layout) Paths(e Entry) Paths {
	dir := filepath.Join(l.BaseDir, e.ID)

	return Paths{
		Dir:          dir,
		Parametrized: filepath.Join(dir, l.ParametrizedFile),
		Goal:         filepath.Join(dir, l.GoalFile),
		Attractors:   filepath.Join(dir, l.AttractorsFile),
	}
}

// Build is the one-time command that produces every experiment binary.
type Build struct {
	Program string   `yaml:"program" json:"program"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Catalog is the complete static configuration of a run. It is built once
// at startup and passed by value; nothing in the harness mutates it.
type Catalog struct {
	Build           Build       `json:"build"`
	CaseStudies     []CaseStudy `json:"case_studies"`
	InferenceBinary string      `json:"inference_binary"`
	Layout          Layout      `json:"layout"`
	Entries         []Entry     `json:"entries"`
}

// Default file names shared by every benchmark directory.
const (
	DefaultBenchDir         = "benchmark_models"
	DefaultParametrizedFile = "model_parametrized.aeon"
	DefaultGoalFile         = "model_concrete.aeon"
	DefaultAttractorsFile   = "attractor_states.txt"
)

// DefaultEntryIDs lists the scalability benchmarks from smallest to largest.
func DefaultEntryIDs() []string {
	return []string{
		"celldivb_9v", "eprotein_35v", "nsp4_60v", "etc_84v",
		"interferon1_121v", "nsp9_252v", "macrophage_321v",
	}
}

// Default returns the built-in experiment catalog.
func Default() Catalog {
	ids := DefaultEntryIDs()
	entries := make([]Entry, 0, len(ids))

	for _, id := range ids {
		entries = append(entries, Entry{ID: id})
	}

	return Catalog{
		Build: Build{Program: "cargo", Args: []string{"build", "--release"}},
		CaseStudies: []CaseStudy{
			{
				Name:   "tlgl",
				Title:  "CASE STUDY 1",
				Binary: "./target/release/case-study-tlgl",
				Variants: []Variant{
					{Label: "initial variant of the sketch"},
					{Flag: "-r", Label: "refined variant of the sketch"},
				},
			},
			{
				Name:   "arabidopsis",
				Title:  "CASE STUDY 2",
				Binary: "./target/release/case-study-arabidopsis",
				Variants: []Variant{
					{Label: "variant of the sketch with fixed-point properties only"},
					{Flag: "-m", Label: "variant of the sketch with complex properties"},
				},
			},
		},
		InferenceBinary: "./target/release/inference-with-attractors",
		Layout: Layout{
			BaseDir:          DefaultBenchDir,
			ParametrizedFile: DefaultParametrizedFile,
			GoalFile:         DefaultGoalFile,
			AttractorsFile:   DefaultAttractorsFile,
		},
		Entries: entries,
	}
}

// Validate checks the catalog for missing or duplicate declarations.
// Entry ordering is a convention and is not checked.
func (c Catalog) Validate() error {
	if c.Build.Program == "" {
		return fmt.Errorf("build program is empty")
	}

	names := make(map[string]bool, len(c.CaseStudies))

	for i, cs := range c.CaseStudies {
		if cs.Name == "" {
			return fmt.Errorf("case study %d has no name", i)
		}
		if names[cs.Name] {
			return fmt.Errorf("duplicate case study %q", cs.Name)
		}
		names[cs.Name] = true

		if cs.Binary == "" {
			return fmt.Errorf("case study %q has no binary", cs.Name)
		}
		if len(cs.Variants) == 0 {
			return fmt.Errorf("case study %q has no variants", cs.Name)
		}

		flags := make(map[string]bool, len(cs.Variants))

		for j, v := range cs.Variants {
			if v.Label == "" {
				return fmt.Errorf("case study %q: variant %d has no label",
					cs.Name, j)
			}
			if flags[v.Flag] {
				return fmt.Errorf("case study %q: duplicate flag %q",
					cs.Name, v.Flag)
			}
			flags[v.Flag] = true
		}
	}

	if len(c.Entries) > 0 && c.InferenceBinary == "" {
		return fmt.Errorf("inference binary is empty")
	}

	l := c.Layout
	if l.ParametrizedFile == "" || l.GoalFile == "" || l.AttractorsFile == "" {
		return fmt.Errorf("layout file names must all be set")
	}

	ids := make(map[string]bool, len(c.Entries))

	for i, e := range c.Entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d has no id", i)
		}
		if e.ID == "." || e.ID == ".." || strings.ContainsAny(e.ID, `/\`) {
			return fmt.Errorf("entry %q must name a single directory under %q",
				e.ID, l.BaseDir)
		}
		if ids[e.ID] {
			return fmt.Errorf("duplicate entry %q", e.ID)
		}
		ids[e.ID] = true
	}

	return nil
}

// SelectCaseStudies returns a copy of the catalog keeping only the named
// case studies, in declared order. An empty selection keeps all of them.
func (c Catalog) SelectCaseStudies(names []string) (Catalog, error) {
	if len(names) == 0 {
		return c, nil
	}

	want, err := toSet(names)
	if err != nil {
		return Catalog{}, fmt.Errorf("select case studies: %w", err)
	}

	kept := make([]CaseStudy, 0, len(want))

	for _, cs := range c.CaseStudies {
		if want[cs.Name] {
			kept = append(kept, cs)
			delete(want, cs.Name)
		}
	}

	if len(want) > 0 {
		return Catalog{}, fmt.Errorf("unknown case study %q", firstMissing(names, want))
	}

	c.CaseStudies = kept

	return c, nil
}

// SelectEntries returns a copy of the catalog keeping only the given
// benchmark ids, in declared order. An empty selection keeps all of them.
func (c Catalog) SelectEntries(ids []string) (Catalog, error) {
	if len(ids) == 0 {
		return c, nil
	}

	want, err := toSet(ids)
	if err != nil {
		return Catalog{}, fmt.Errorf("select models: %w", err)
	}

	kept := make([]Entry, 0, len(want))

	for _, e := range c.Entries {
		if want[e.ID] {
			kept = append(kept, e)
			delete(want, e.ID)
		}
	}

	if len(want) > 0 {
		return Catalog{}, fmt.Errorf("unknown model %q", firstMissing(ids, want))
	}

	c.Entries = kept

	return c, nil
}

func toSet(values []string) (map[string]bool, error) {
	set := make(map[string]bool, len(values))

	for _, v := range values {
		if set[v] {
			return nil, fmt.Errorf("%q given twice", v)
		}
		set[v] = true
	}

	return set, nil
}

// firstMissing reports the first requested value still left in missing,
// so error messages follow the caller's argument order.
func firstMissing(requested []string, missing map[string]bool) string {
	for _, v := range requested {
		if missing[v] {
			return v
		}
	}

	return ""
}
