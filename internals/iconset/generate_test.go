package iconset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/minepkg/appicon/internals/render"
	"github.com/minepkg/appicon/pkg/contents"
)

const manifest = `{
  "images" : [
    {
      "size" : "60x60",
      "idiom" : "iphone",
      "filename" : "Icon-120.png",
      "scale" : "2x"
    },
    {
      "size" : "29x29",
      "idiom" : "ipad"
    },
    {
      "size" : "1024x1024",
      "idiom" : "ios-marketing",
      "scale" : "1x",
      "platform" : "ios",
      "appearances" : [ { "appearance" : "luminosity", "value" : "dark" } ]
    }
  ],
  "info" : {
    "version" : 1,
    "author" : "xcode"
  }
}`

// fakeRenderer returns a tiny blob describing the wanted size instead of a real png
type fakeRenderer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeRenderer) Render(ctx context.Context, src []byte, width int, height int) ([]byte, error) {
	key := fmt.Sprintf("%dx%d", width, height)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if err := f.fail[key]; err != nil {
		return nil, err
	}
	return []byte(key), nil
}

// setup creates an asset set with the given manifest and a source image
func setup(t *testing.T, manifest string) (dir string, source string) {
	t.Helper()
	root := t.TempDir()
	dir = filepath.Join(root, "AppIcon.appiconset")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if manifest != "" {
		if err := os.WriteFile(filepath.Join(dir, contents.Filename), []byte(manifest), 0644); err != nil {
			t.Fatal(err)
		}
	}

	source = filepath.Join(root, "icon.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(source, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, source
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestGenerate(t *testing.T) {
	for _, concurrency := range []int{0, 4} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			dir, source := setup(t, manifest)
			renderer := &fakeRenderer{}

			planned, rendered := 0, 0
			res, err := Generate(context.Background(), Options{
				SourcePath:  source,
				AssetDir:    dir,
				Renderer:    renderer,
				Concurrency: concurrency,
				OnPlanned:   func(r []Rendition) { planned = len(r) },
				OnRendered:  func(r Rendition) { rendered++ },
			})
			if err != nil {
				t.Fatal(err)
			}
			if planned != 3 || rendered != 3 || res.Images != 3 || res.Changed != 3 {
				t.Fatalf("unexpected result %+v (%d planned, %d rendered)", res, planned, rendered)
			}

			want := []string{
				"AppIcon-1024x1024@1x-ios-marketing.png",
				"AppIcon-29x29@1x-ipad.png",
				"AppIcon-60x60@2x-iphone.png",
				"Contents.json",
			}
			if got := listDir(t, dir); fmt.Sprint(got) != fmt.Sprint(want) {
				t.Fatalf("expected files %v, got %v", want, got)
			}
			if got := string(readFile(t, filepath.Join(dir, "AppIcon-60x60@2x-iphone.png"))); got != "120x120" {
				t.Fatalf("expected a 120x120 rendition, got %s", got)
			}
			if res.Written() != uint64(len("120x120")+len("29x29")+len("1024x1024")) {
				t.Fatalf("unexpected written size %d", res.Written())
			}

			c, err := contents.Read(filepath.Join(dir, contents.Filename))
			if err != nil {
				t.Fatal(err)
			}
			if len(c.Images) != 3 {
				t.Fatalf("expected 3 images, got %d", len(c.Images))
			}
			for i, name := range []string{
				"AppIcon-60x60@2x-iphone.png",
				"AppIcon-29x29@1x-ipad.png",
				"AppIcon-1024x1024@1x-ios-marketing.png",
			} {
				if c.Images[i].Filename != name {
					t.Fatalf("image %d: expected %s, got %s", i, name, c.Images[i].Filename)
				}
			}
		})
	}
}

func TestGenerateKeepsEverythingElse(t *testing.T) {
	dir, source := setup(t, manifest)
	if _, err := Generate(context.Background(), Options{SourcePath: source, AssetDir: dir, Renderer: &fakeRenderer{}}); err != nil {
		t.Fatal(err)
	}

	var before, after struct {
		Images []map[string]interface{} `json:"images"`
		Info   map[string]interface{}   `json:"info"`
	}
	if err := json.Unmarshal([]byte(manifest), &before); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(readFile(t, filepath.Join(dir, contents.Filename)), &after); err != nil {
		t.Fatal(err)
	}

	if fmt.Sprint(before.Info) != fmt.Sprint(after.Info) {
		t.Fatalf("info changed: %v -> %v", before.Info, after.Info)
	}
	for i := range before.Images {
		delete(before.Images[i], "filename")
		delete(after.Images[i], "filename")
		if fmt.Sprint(before.Images[i]) != fmt.Sprint(after.Images[i]) {
			t.Fatalf("image %d changed: %v -> %v", i, before.Images[i], after.Images[i])
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	dir, source := setup(t, manifest)
	opts := Options{SourcePath: source, AssetDir: dir, Renderer: render.New(), Concurrency: 2}

	if _, err := Generate(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	first := readFile(t, filepath.Join(dir, contents.Filename))
	firstFiles := listDir(t, dir)

	res, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second := readFile(t, filepath.Join(dir, contents.Filename))

	if !bytes.Equal(first, second) {
		t.Fatalf("manifest changed between runs:\n%s\n---\n%s", first, second)
	}
	if fmt.Sprint(firstFiles) != fmt.Sprint(listDir(t, dir)) {
		t.Fatal("files changed between runs")
	}
	if res.Changed != 0 {
		t.Fatalf("expected no changed entries, got %d", res.Changed)
	}

	// renditions have the exact pixel size
	for _, r := range res.Renditions {
		cfg, err := png.DecodeConfig(bytes.NewReader(readFile(t, filepath.Join(dir, r.Filename))))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Width != r.Width || cfg.Height != r.Height {
			t.Fatalf("%s: expected %dx%d, got %dx%d", r.Filename, r.Width, r.Height, cfg.Width, cfg.Height)
		}
	}
}

func TestGenerateSharedFilename(t *testing.T) {
	dir, source := setup(t, `{"images": [
		{"size": "20x20", "idiom": "iphone", "scale": "2x"},
		{"size": "20x20", "idiom": "iphone", "scale": "2x", "appearances": [{"appearance": "luminosity", "value": "dark"}]}
	]}`)
	renderer := &fakeRenderer{}
	res, err := Generate(context.Background(), Options{SourcePath: source, AssetDir: dir, Renderer: renderer, Concurrency: 8})
	if err != nil {
		t.Fatal(err)
	}
	if len(renderer.calls) != 1 || len(res.Renditions) != 1 {
		t.Fatalf("expected one render, got %v", renderer.calls)
	}
	if fmt.Sprint(res.Renditions[0].Entries) != "[0 1]" {
		t.Fatalf("expected both entries to share the file, got %v", res.Renditions[0].Entries)
	}
}

func TestGenerateErrors(t *testing.T) {
	renderErr := errors.New("boom")

	tests := []struct {
		name     string
		manifest string
		source   bool
		renderer *fakeRenderer
		kind     Kind
	}{
		{"missing manifest", "", true, &fakeRenderer{}, ManifestNotFound},
		{"malformed manifest", `{"images": [`, true, &fakeRenderer{}, ManifestInvalid},
		{"no images", `{"info": {}}`, true, &fakeRenderer{}, ManifestInvalid},
		{"zero size", `{"images": [{"size": "60x60", "idiom": "iphone"}, {"size": "0x10", "idiom": "iphone"}]}`, true, &fakeRenderer{}, InvalidImageSpec},
		{"letters", `{"images": [{"size": "abcx10", "idiom": "iphone"}]}`, true, &fakeRenderer{}, InvalidImageSpec},
		{"bad scale", `{"images": [{"size": "10x10", "scale": "twox", "idiom": "iphone"}]}`, true, &fakeRenderer{}, InvalidImageSpec},
		{"overflowing size", `{"images": [{"size": "60x60", "idiom": "iphone"}, {"size": "4611686018427387904x1", "scale": "2x", "idiom": "mac"}]}`, true, &fakeRenderer{}, InvalidImageSpec},
		{"huge size", `{"images": [{"size": "60x60", "idiom": "iphone"}, {"size": "3037000500x3037000500", "idiom": "mac"}]}`, true, &fakeRenderer{}, InvalidImageSpec},
		{"missing source", `{"images": [{"size": "10x10", "idiom": "iphone"}]}`, false, &fakeRenderer{}, RenderFailure},
		{
			"render fails",
			`{"images": [{"size": "10x10", "idiom": "iphone"}, {"size": "20x20", "idiom": "iphone"}]}`,
			true,
			&fakeRenderer{fail: map[string]error{"20x20": renderErr}},
			RenderFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, source := setup(t, tt.manifest)
			if !tt.source {
				source = filepath.Join(dir, "missing.png")
			}
			filesBefore := listDir(t, dir)

			_, err := Generate(context.Background(), Options{SourcePath: source, AssetDir: dir, Renderer: tt.renderer})
			if err == nil {
				t.Fatal("expected an error")
			}
			if KindOf(err) != tt.kind {
				t.Fatalf("expected %v, got %v (%v)", tt.kind, KindOf(err), err)
			}

			// manifest must be untouched
			if tt.manifest != "" {
				if got := string(readFile(t, filepath.Join(dir, contents.Filename))); got != tt.manifest {
					t.Fatalf("manifest was modified:\n%s", got)
				}
			}

			// nothing is rendered before the manifest and all sizes are known to be good
			if tt.kind != RenderFailure && fmt.Sprint(filesBefore) != fmt.Sprint(listDir(t, dir)) {
				t.Fatalf("expected no new files, got %v", listDir(t, dir))
			}
		})
	}

	t.Run("render error is kept", func(t *testing.T) {
		dir, source := setup(t, `{"images": [{"size": "20x20", "idiom": "iphone"}]}`)
		_, err := Generate(context.Background(), Options{
			SourcePath: source,
			AssetDir:   dir,
			Renderer:   &fakeRenderer{fail: map[string]error{"20x20": renderErr}},
		})
		if !errors.Is(err, renderErr) {
			t.Fatalf("expected the render error to be wrapped, got %v", err)
		}
	})
}

func TestGeneratePersistFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}

	dir, source := setup(t, manifest)
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	rendered := 0
	_, err := Generate(context.Background(), Options{
		SourcePath: source,
		AssetDir:   dir,
		Renderer:   &fakeRenderer{},
		OnRendered: func(r Rendition) {
			rendered++
			// all images are written, the manifest can not be anymore
			if rendered == 3 {
				if err := os.Chmod(dir, 0555); err != nil {
					t.Error(err)
				}
			}
		},
	})
	if KindOf(err) != PersistFailure {
		t.Fatalf("expected %v, got %v (%v)", PersistFailure, KindOf(err), err)
	}

	if got := string(readFile(t, filepath.Join(dir, contents.Filename))); got != manifest {
		t.Fatalf("manifest was modified:\n%s", got)
	}
	for _, name := range listDir(t, dir) {
		if strings.HasPrefix(name, "."+contents.Filename+".tmp-") {
			t.Fatalf("temporary file %s was left behind", name)
		}
	}
}

func TestGenerateInvalidArgument(t *testing.T) {
	dir, source := setup(t, manifest)
	for _, opts := range []Options{
		{AssetDir: dir},
		{SourcePath: source},
		{},
	} {
		_, err := Generate(context.Background(), opts)
		if KindOf(err) != InvalidArgument {
			t.Fatalf("expected InvalidArgument, got %v", err)
		}
	}
	if got := string(readFile(t, filepath.Join(dir, contents.Filename))); got != manifest {
		t.Fatal("manifest was modified")
	}
}

func TestGenerateCancelled(t *testing.T) {
	dir, source := setup(t, manifest)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, Options{SourcePath: source, AssetDir: dir, Renderer: &fakeRenderer{}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := string(readFile(t, filepath.Join(dir, contents.Filename))); got != manifest {
		t.Fatal("manifest was modified")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("other")) != KindUnknown {
		t.Fatal("expected KindUnknown")
	}
	wrapped := fmt.Errorf("wrapped: %w", &Error{Kind: PersistFailure, Index: -1})
	if KindOf(wrapped) != PersistFailure {
		t.Fatal("expected PersistFailure")
	}
	if PersistFailure.String() != "persist failure" {
		t.Fatalf("unexpected string %q", PersistFailure.String())
	}
}
