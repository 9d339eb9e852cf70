package pipeline

import (
	"context"
	"testing"

	"github.com/tile-kit/tilekit/tilekit"
	"github.com/tile-kit/tilekit/vdl"
)

func TestBuildPipelineChainsReadThroughTransform(t *testing.T) {
	factory := NewFactory(".")
	source := newStubOperation("src", tilekit.FormatPBF, tilekit.CompressionNone)
	coord, _ := tilekit.NewTileCoord3(0, 0, 0)
	source.put(coord, tilekit.NewBlob([]byte("a")))

	factory.RegisterRead("stub_read", func(ctx context.Context, baseDir string, node vdl.Node) (Operation, error) {
		return source, nil
	})
	RegisterRecompress(factory)

	p, err := vdl.Parse(`stub_read | recompress compression="gzip"`)
	if err != nil {
		t.Fatal(err)
	}

	op, err := factory.BuildPipeline(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if op.Parameters().Compression != tilekit.CompressionGzip {
		t.Fatalf("expected gzip output, got %s", op.Parameters().Compression)
	}
}

func TestBuiltPipelineReadRefusesOverrideCompression(t *testing.T) {
	factory := NewFactory(".")
	source := newStubOperation("src", tilekit.FormatPBF, tilekit.CompressionNone)

	factory.RegisterRead("stub_read", func(ctx context.Context, baseDir string, node vdl.Node) (Operation, error) {
		return source, nil
	})

	p, err := vdl.Parse(`stub_read`)
	if err != nil {
		t.Fatal(err)
	}
	op, err := factory.BuildPipeline(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	if err := op.OverrideCompression(tilekit.CompressionGzip); err != tilekit.ErrCompressionNotOverridable {
		t.Fatalf("expected ErrCompressionNotOverridable, got %v", err)
	}
	// The underlying stub itself has no such restriction.
	if err := source.OverrideCompression(tilekit.CompressionGzip); err != nil {
		t.Fatalf("stub should allow override directly: %v", err)
	}
}

func TestBuildOperationUnknownNameErrors(t *testing.T) {
	factory := NewFactory(".")
	p, err := vdl.Parse(`nonexistent_thing`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := factory.BuildPipeline(context.Background(), p); err == nil {
		t.Fatal("expected an error for an unregistered node name")
	}
}
