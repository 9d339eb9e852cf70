// Package pipeline builds an operation graph from a parsed VDL pipeline.
// See spec.md section 4.5.
package pipeline

import (
	"context"
	"fmt"

	"github.com/tile-kit/tilekit/tilekit"
	"github.com/tile-kit/tilekit/vdl"
)

// Operation is a node in a built pipeline graph. Every operation - read,
// transform, or overlay - publishes the same TilesReaderParameters/
// TileData/BBoxTileStream contract, so downstream stages never need to
// know what kind of node they are reading from. Pipeline operations always
// reject OverrideCompression: their wire compression is derived, not
// settable.
type Operation = tilekit.Reader

// ReadOperationFactory builds a leftmost (source) operation from a VDL node.
type ReadOperationFactory func(ctx context.Context, baseDir string, node vdl.Node) (Operation, error)

// TransformOperationFactory builds an operation that consumes a single
// upstream operation.
type TransformOperationFactory func(ctx context.Context, baseDir string, node vdl.Node, source Operation) (Operation, error)

// OverlayOperationFactory builds an operation from N already-built child
// operations (one per child pipeline of the VDL node).
type OverlayOperationFactory func(ctx context.Context, baseDir string, node vdl.Node, children []Operation) (Operation, error)

// Factory holds the base directory used to resolve file references in VDL
// nodes, plus the three operation registries keyed by node name.
type Factory struct {
	BaseDir string

	readFactories      map[string]ReadOperationFactory
	transformFactories map[string]TransformOperationFactory
	overlayFactories   map[string]OverlayOperationFactory
}

// NewFactory returns an empty factory rooted at baseDir.
func NewFactory(baseDir string) *Factory {
	return &Factory{
		BaseDir:            baseDir,
		readFactories:      map[string]ReadOperationFactory{},
		transformFactories: map[string]TransformOperationFactory{},
		overlayFactories:   map[string]OverlayOperationFactory{},
	}
}

// RegisterRead registers a read (source) operation factory under name.
func (f *Factory) RegisterRead(name string, factory ReadOperationFactory) {
	f.readFactories[name] = factory
}

// RegisterTransform registers a transform operation factory under name.
func (f *Factory) RegisterTransform(name string, factory TransformOperationFactory) {
	f.transformFactories[name] = factory
}

// RegisterOverlay registers an overlay (composite) operation factory under name.
func (f *Factory) RegisterOverlay(name string, factory OverlayOperationFactory) {
	f.overlayFactories[name] = factory
}

// noOverrideSource wraps a read operation so that, once it is part of a
// built pipeline, OverrideCompression always refuses - regardless of
// whether the underlying container (e.g. an mbtiles reader used standalone)
// happens to support it. See spec.md section 6 ("pipeline readers refuse").
type noOverrideSource struct {
	Operation
}

func (noOverrideSource) OverrideCompression(tilekit.TileCompression) error {
	return tilekit.ErrCompressionNotOverridable
}

// BuildPipeline builds a chain of operations left to right: the leftmost
// node is a read or overlay operation; every later node is a transform of
// the previous operation's output.
func (f *Factory) BuildPipeline(ctx context.Context, p vdl.Pipeline) (Operation, error) {
	if len(p.Nodes) == 0 {
		return nil, fmt.Errorf("pipeline: empty pipeline")
	}
	op, err := f.BuildOperation(ctx, p.Nodes[0], nil)
	if err != nil {
		return nil, err
	}
	for _, node := range p.Nodes[1:] {
		op, err = f.BuildOperation(ctx, node, op)
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

// BuildOperation dispatches node to the matching registry. When source is
// nil the node must be a read or overlay (source) operation; when non-nil
// it must be a transform of source. Overlay nodes invoke BuildPipeline on
// each of the node's child pipelines.
func (f *Factory) BuildOperation(ctx context.Context, node vdl.Node, source Operation) (Operation, error) {
	if overlayFactory, ok := f.overlayFactories[node.Name]; ok {
		if source != nil {
			return nil, fmt.Errorf("pipeline: overlay operation %q cannot follow another operation", node.Name)
		}
		children := make([]Operation, 0, len(node.Children))
		for i, childPipeline := range node.Children {
			child, err := f.BuildPipeline(ctx, childPipeline)
			if err != nil {
				return nil, fmt.Errorf("pipeline: building child %d of %q: %w", i, node.Name, err)
			}
			children = append(children, child)
		}
		op, err := overlayFactory(ctx, f.BaseDir, node, children)
		if err != nil {
			return nil, fmt.Errorf("pipeline: building overlay %q: %w", node.Name, err)
		}
		return op, nil
	}

	if source == nil {
		readFactory, ok := f.readFactories[node.Name]
		if !ok {
			return nil, fmt.Errorf("pipeline: unknown read operation %q", node.Name)
		}
		op, err := readFactory(ctx, f.BaseDir, node)
		if err != nil {
			return nil, fmt.Errorf("pipeline: building read %q: %w", node.Name, err)
		}
		return noOverrideSource{op}, nil
	}

	transformFactory, ok := f.transformFactories[node.Name]
	if !ok {
		return nil, fmt.Errorf("pipeline: unknown transform operation %q", node.Name)
	}
	op, err := transformFactory(ctx, f.BaseDir, node, source)
	if err != nil {
		return nil, fmt.Errorf("pipeline: building transform %q: %w", node.Name, err)
	}
	return op, nil
}
