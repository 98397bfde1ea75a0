// Package catalog finds the app icon sets of an Xcode asset catalog
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minepkg/appicon/pkg/contents"
	"golang.org/x/exp/slices"
)

// DefaultRoot is the name of the asset catalog directory that is searched for by default
const DefaultRoot = "Assets.xcassets"

// IconSetExt is the extension of app icon set directories
const IconSetExt = ".appiconset"

var (
	// ErrAssetsRootNotFound is returned if the asset catalog directory does not exist
	ErrAssetsRootNotFound = errors.New("asset catalog not found")
	// ErrIconSetNotFound is returned if a named icon set does not exist
	ErrIconSetNotFound = errors.New("icon set not found")
)

// Catalog is an asset catalog directory
type Catalog struct {
	Root string
}

// Open returns the catalog at root. It fails with ErrAssetsRootNotFound if root
// does not exist or is not a directory.
func Open(root string) (*Catalog, error) {
	info, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		return nil, fmt.Errorf("%w: %s", ErrAssetsRootNotFound, root)
	case err != nil:
		return nil, err
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrAssetsRootNotFound, root)
	}
	return &Catalog{Root: root}, nil
}

// IconSet is one .appiconset directory
type IconSet struct {
	// Name including the .appiconset extension
	Name string
	// Dir is the full path
	Dir string
}

// ManifestPath returns the path to the Contents.json of this set
func (s *IconSet) ManifestPath() string {
	return filepath.Join(s.Dir, contents.Filename)
}

// IconSets returns all icon sets sorted by name
func (c *Catalog) IconSets() ([]*IconSet, error) {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), IconSetExt) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	sets := make([]*IconSet, 0, len(names))
	for _, name := range names {
		sets = append(sets, &IconSet{Name: name, Dir: filepath.Join(c.Root, name)})
	}
	return sets, nil
}

// IconSet returns the set with the given name. The extension can be omitted.
func (c *Catalog) IconSet(name string) (*IconSet, error) {
	if !strings.HasSuffix(name, IconSetExt) {
		name += IconSetExt
	}
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: %s", ErrIconSetNotFound, name)
	}
	dir := filepath.Join(c.Root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIconSetNotFound, name)
	}
	return &IconSet{Name: name, Dir: dir}, nil
}

// Names returns the names of sets
func Names(sets []*IconSet) []string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	return names
}
