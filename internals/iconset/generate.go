/*
Package iconset regenerates the images of an Xcode app icon set.

Generate reads the Contents.json of the set, renders the source image once for every
size, scale and idiom combination listed in it and points every entry at its new file.
The manifest is written once at the very end, so a failing run never leaves a
half-updated manifest behind.
*/
package iconset

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/minepkg/appicon/internals/render"
	"github.com/minepkg/appicon/internals/utils"
	"github.com/minepkg/appicon/pkg/contents"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Options configure one run of Generate
type Options struct {
	// SourcePath is the image all renditions are created from. Required
	SourcePath string
	// AssetDir is the .appiconset directory containing the Contents.json. Required
	AssetDir string
	// Renderer used to resize the source. Defaults to render.New()
	Renderer render.Renderer
	// Concurrency is the number of images rendered in parallel. 1 or less renders one after another
	Concurrency int
	// OnPlanned is called with all renditions before the first one is rendered
	OnPlanned func(renditions []Rendition)
	// OnRendered is called after every written image. Calls never overlap
	OnRendered func(r Rendition)
}

func (o *Options) validate() error {
	switch {
	case o.SourcePath == "":
		return newError(InvalidArgument, "", errors.New("source path is required"))
	case o.AssetDir == "":
		return newError(InvalidArgument, "", errors.New("asset directory is required"))
	}
	return nil
}

// Rendition is one image file written by Generate
type Rendition struct {
	// Filename relative to the asset directory
	Filename string
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Size is the number of bytes written
	Size int
	// Entries are the indices of the manifest images using this file
	Entries []int
}

// Result summarizes a successful run
type Result struct {
	// Manifest is the path of the written Contents.json
	Manifest string
	// Renditions in manifest order
	Renditions []Rendition
	// Images is the number of image entries in the manifest
	Images int
	// Changed is the number of entries that now reference a different file
	Changed int
}

// Written returns the total number of bytes of all renditions
func (r *Result) Written() uint64 {
	var total uint64
	for _, rendition := range r.Renditions {
		total += uint64(rendition.Size)
	}
	return total
}

// Generate renders every image listed in the manifest of opts.AssetDir from opts.SourcePath
// and rewrites the manifest to reference the new files.
// Errors are of type *Error, use KindOf to tell them apart.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New()
	}

	manifestPath := filepath.Join(opts.AssetDir, contents.Filename)
	manifest, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	renditions, err := plan(manifest)
	if err != nil {
		return nil, err
	}

	if opts.OnPlanned != nil {
		opts.OnPlanned(renditions)
	}

	src, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, errors.WithStack(newError(RenderFailure, opts.SourcePath, err))
	}

	if err := renderAll(ctx, opts, src, renditions); err != nil {
		return nil, err
	}

	changed := 0
	for _, r := range renditions {
		for _, i := range r.Entries {
			if manifest.Images[i].Filename != r.Filename {
				changed++
			}
			manifest.Images[i].Filename = r.Filename
		}
	}

	if err := writeManifest(manifestPath, manifest); err != nil {
		return nil, err
	}

	return &Result{
		Manifest:   manifestPath,
		Renditions: renditions,
		Images:     len(manifest.Images),
		Changed:    changed,
	}, nil
}

func readManifest(path string) (*contents.Contents, error) {
	manifest, err := contents.Read(path)
	switch {
	case os.IsNotExist(err):
		return nil, errors.WithStack(newError(ManifestNotFound, path, err))
	case err != nil:
		return nil, errors.WithStack(newError(ManifestInvalid, path, err))
	}
	return manifest, nil
}

// plan returns one rendition per distinct filename.
// Entries deriving the same filename always want the same pixel size, so they share one file.
func plan(manifest *contents.Contents) ([]Rendition, error) {
	renditions := make([]Rendition, 0, len(manifest.Images))
	byName := make(map[string]int, len(manifest.Images))

	for i, img := range manifest.Images {
		dim, err := img.Dimensions()
		if err == nil {
			_, err = img.DerivedFilename()
		}
		if err != nil {
			return nil, errors.WithStack(&Error{Kind: InvalidImageSpec, Index: i, Err: err})
		}

		name := dim.Filename(img.Idiom)
		if existing, ok := byName[name]; ok {
			renditions[existing].Entries = append(renditions[existing].Entries, i)
			continue
		}
		byName[name] = len(renditions)
		renditions = append(renditions, Rendition{
			Filename: name,
			Width:    dim.PixelWidth(),
			Height:   dim.PixelHeight(),
			Entries:  []int{i},
		})
	}
	return renditions, nil
}

// renderAll renders and writes all renditions. The first failure cancels the rest.
func renderAll(ctx context.Context, opts Options, src []byte, renditions []Rendition) error {
	g, ctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	var mu sync.Mutex
	for i := range renditions {
		r := &renditions[i]
		g.Go(func() error {
			target := filepath.Join(opts.AssetDir, r.Filename)
			fail := func(err error) error {
				return errors.WithStack(&Error{Kind: RenderFailure, Path: target, Index: r.Entries[0], Err: err})
			}

			if err := ctx.Err(); err != nil {
				return fail(err)
			}
			data, err := opts.Renderer.Render(ctx, src, r.Width, r.Height)
			if err != nil {
				return fail(err)
			}
			if err := utils.WriteFileAtomic(target, data, 0644); err != nil {
				return fail(err)
			}
			r.Size = len(data)

			if opts.OnRendered != nil {
				mu.Lock()
				opts.OnRendered(*r)
				mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}

func writeManifest(path string, manifest *contents.Contents) error {
	data, err := manifest.Bytes()
	if err != nil {
		return errors.WithStack(newError(PersistFailure, path, err))
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := utils.WriteFileAtomic(path, data, perm); err != nil {
		return errors.WithStack(newError(PersistFailure, path, err))
	}
	return nil
}
