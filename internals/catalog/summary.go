package catalog

import (
	"os"
	"path/filepath"

	"golang.org/x/exp/slices"

	"github.com/minepkg/appicon/pkg/contents"
)

// Summary describes the manifest of an icon set
type Summary struct {
	Name string `json:"name" yaml:"name"`
	// Images is the number of image entries
	Images int `json:"images" yaml:"images"`
	// Idioms used by the entries, sorted
	Idioms []string `json:"idioms" yaml:"idioms"`
	// Present is the number of entries that reference an existing file
	Present int `json:"present" yaml:"present"`
	// Error is set if the manifest could not be read
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary reads the manifest of the set. A missing or broken manifest is reported in Summary.Error
func (s *IconSet) Summary() *Summary {
	summary := &Summary{Name: s.Name, Idioms: []string{}}

	manifest, err := contents.Read(s.ManifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			summary.Error = contents.Filename + " not found"
		} else {
			summary.Error = err.Error()
		}
		return summary
	}

	summary.Images = len(manifest.Images)
	for _, img := range manifest.Images {
		if img.Idiom != "" && !slices.Contains(summary.Idioms, img.Idiom) {
			summary.Idioms = append(summary.Idioms, img.Idiom)
		}
		if img.Filename == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.Dir, img.Filename)); err == nil {
			summary.Present++
		}
	}
	slices.Sort(summary.Idioms)

	return summary
}
