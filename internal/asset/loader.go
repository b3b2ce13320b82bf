package asset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"product-viewer/internal/archive"
	"product-viewer/internal/download"

	"github.com/qmuntal/gltf"
	"github.com/sirupsen/logrus"
)

// Loader turns a URL into a settled State. Implementations never return Pending and never panic;
// every failure is reported as Failed.
type Loader interface {
	Load(ctx context.Context, url string) State
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(ctx context.Context, url string) State

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, url string) State { return f(ctx, url) }

// GLTFLoader loads glTF 2.0 files (.gltf or .glb). Remote URLs are downloaded first;
// anything else is a path under Root, so "/shoe.glb" resolves to Root/shoe.glb.
// A .zip bundle is extracted under BundleDir and the model inside it is parsed.
type GLTFLoader struct {
	Root      string
	Fetcher   *download.Client
	BundleDir string
	Timeout   time.Duration // zero: no timeout
	Log       logrus.FieldLogger
}

// NewGLTFLoader returns a loader reading local assets under root and saving remote ones via fetcher.
// Bundles are extracted next to downloads, or under the system temp dir without a fetcher.
func NewGLTFLoader(root string, fetcher *download.Client, log logrus.FieldLogger) *GLTFLoader {
	bundles := filepath.Join(os.TempDir(), "product-viewer", "bundles")
	if fetcher != nil && fetcher.DestDir != "" {
		bundles = filepath.Join(fetcher.DestDir, "bundles")
	}
	return &GLTFLoader{Root: root, Fetcher: fetcher, BundleDir: bundles, Log: log}
}

// Load fetches and parses url. It does not retry.
func (l *GLTFLoader) Load(ctx context.Context, url string) (st State) {
	defer func() {
		if r := recover(); r != nil {
			st = Failed(&LoadError{URL: url, Op: OpParse, Err: fmt.Errorf("panic: %v", r)})
		}
	}()
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	path, err := l.resolve(ctx, url)
	if err != nil {
		return Failed(&LoadError{URL: url, Op: OpFetch, Err: err})
	}
	if archive.IsBundle(path) {
		if path, err = archive.OpenBundle(path, l.BundleDir); err != nil {
			return Failed(&LoadError{URL: url, Op: OpUnpack, Err: err})
		}
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return Failed(&LoadError{URL: url, Op: OpParse, Err: err})
	}
	root, err := buildTree(doc)
	if err != nil {
		return Failed(&LoadError{URL: url, Op: OpParse, Err: err})
	}
	if l.Log != nil {
		l.Log.WithField("url", url).WithField("path", path).Debug("asset parsed")
	}
	return Ready(&SceneGraph{URL: url, Path: path, Root: root})
}

func (l *GLTFLoader) resolve(ctx context.Context, url string) (string, error) {
	if download.IsRemote(url) {
		if l.Fetcher == nil {
			return "", errors.New("no fetcher configured for remote assets")
		}
		return l.Fetcher.Fetch(ctx, url)
	}
	p := strings.TrimPrefix(url, "file://")
	if l.Root != "" {
		p = filepath.Join(l.Root, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return p, nil
}

// buildTree converts the document's default scene (or scene 0) into a Node tree under a synthetic root.
// Documents without scenes use every node that is nobody's child as a root.
func buildTree(doc *gltf.Document) (*Node, error) {
	var roots []int
	switch {
	case len(doc.Scenes) > 0:
		idx := 0
		if doc.Scene != nil {
			idx = int(*doc.Scene)
		}
		if idx >= len(doc.Scenes) {
			return nil, fmt.Errorf("default scene %d out of range", idx)
		}
		for _, r := range doc.Scenes[idx].Nodes {
			roots = append(roots, int(r))
		}
	case len(doc.Nodes) > 0:
		child := make(map[int]bool)
		for _, n := range doc.Nodes {
			for _, c := range n.Children {
				child[int(c)] = true
			}
		}
		for i := range doc.Nodes {
			if !child[i] {
				roots = append(roots, i)
			}
		}
	}
	if len(roots) == 0 {
		return nil, errors.New("document has no nodes")
	}

	b := treeBuilder{doc: doc, onPath: make(map[int]bool)}
	root := &Node{Name: "scene"}
	for _, i := range roots {
		n, err := b.node(i)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, n)
	}
	return root, nil
}

type treeBuilder struct {
	doc    *gltf.Document
	onPath map[int]bool
}

func (b *treeBuilder) node(i int) (*Node, error) {
	if i >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", i)
	}
	if b.onPath[i] {
		return nil, fmt.Errorf("node %d is its own ancestor", i)
	}
	b.onPath[i] = true
	defer delete(b.onPath, i)

	src := b.doc.Nodes[i]
	n := &Node{Name: src.Name}
	if src.Mesh != nil {
		mi := int(*src.Mesh)
		if mi >= len(b.doc.Meshes) {
			return nil, fmt.Errorf("node %d: mesh %d out of range", i, mi)
		}
		m := b.doc.Meshes[mi]
		n.Mesh = &Mesh{Name: m.Name, Primitives: len(m.Primitives)}
	}
	for _, c := range src.Children {
		child, err := b.node(int(c))
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
