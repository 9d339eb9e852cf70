package tilekit

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// defaultStreamConcurrency bounds how many sub-streams FromStreamIter pulls
// from at once, and is the floor FilterMapBlobParallel callers should use
// for CPU-bound work. See spec.md section 4.3 ("concurrency <= a small
// constant (>= 4)").
const defaultStreamConcurrency = 4

// TileEntry pairs a tile's coordinate with its blob as it moves through a
// TileStream.
type TileEntry struct {
	Coord TileCoord3
	Blob  Blob
}

// TileStream is a single-consumer, forward-only, asynchronous sequence of
// TileEntry values. See spec.md section 4.3. Every constructor returns a
// stream scoped to the given context; Close (or letting the context be
// cancelled) stops upstream production at the next send and discards
// partial work without error, per spec.md section 5.
type TileStream struct {
	ch     chan TileEntry
	cancel context.CancelFunc
	errs   *streamErr
}

type streamErr struct {
	mu  sync.Mutex
	err error
}

func (e *streamErr) set(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
}

func (e *streamErr) get() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func newStream(ctx context.Context) (*TileStream, context.Context, chan TileEntry) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan TileEntry)
	return &TileStream{ch: ch, cancel: cancel, errs: &streamErr{}}, ctx, ch
}

// Close stops upstream production at the next await point.
func (s *TileStream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Err returns the first error observed during production, if any. Only
// meaningful once the stream has been fully drained.
func (s *TileStream) Err() error {
	return s.errs.get()
}

// Next pulls the next entry, or ok=false once the stream is exhausted.
func (s *TileStream) Next() (TileEntry, bool) {
	e, ok := <-s.ch
	return e, ok
}

// FromError returns an already-failed, empty stream. Operations that hit a
// synchronous error before they can start streaming (e.g. a child read
// failure during overlay composition) use this instead of panicking.
func FromError(ctx context.Context, err error) *TileStream {
	s, _, ch := newStream(ctx)
	s.errs.set(err)
	close(ch)
	return s
}

// FromVec returns a finite stream that preserves v's order.
func FromVec(ctx context.Context, v []TileEntry) *TileStream {
	s, ctx, ch := newStream(ctx)
	go func() {
		defer close(ch)
		for _, e := range v {
			select {
			case <-ctx.Done():
				return
			case ch <- e:
			}
		}
	}()
	return s
}

// FromCoordVecSync maps coords through a synchronous per-coord function.
// A false second return value filters that coordinate out of the stream.
func FromCoordVecSync(ctx context.Context, coords []TileCoord3, f func(TileCoord3) (Blob, bool)) *TileStream {
	s, ctx, ch := newStream(ctx)
	go func() {
		defer close(ch)
		for _, c := range coords {
			blob, ok := f(c)
			if !ok {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case ch <- TileEntry{Coord: c, Blob: blob}:
			}
		}
	}()
	return s
}

// FromStreamIter flat-maps an iterator of sub-stream constructors,
// pulling at most defaultStreamConcurrency of them concurrently. Results
// are emitted in completion order, not globally sorted.
func FromStreamIter(ctx context.Context, makers []func(ctx context.Context) *TileStream) *TileStream {
	s, ctx, ch := newStream(ctx)
	go func() {
		defer close(ch)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(defaultStreamConcurrency)
		for _, makeSub := range makers {
			makeSub := makeSub
			g.Go(func() error {
				sub := makeSub(gctx)
				defer sub.Close()
				for {
					e, ok := sub.Next()
					if !ok {
						break
					}
					select {
					case <-gctx.Done():
						return gctx.Err()
					case ch <- e:
					}
				}
				return sub.Err()
			})
		}
		s.errs.set(g.Wait())
	}()
	return s
}

// FilterMapBlobParallel applies a pure, CPU-bound function to every blob in
// the stream with the given parallelism, returning a new stream. Coord-blob
// pairing is preserved but input order is not. A false second return value
// from f drops that tile.
func (s *TileStream) FilterMapBlobParallel(ctx context.Context, workers int, f func(Blob) (Blob, bool, error)) *TileStream {
	if workers < 1 {
		workers = defaultStreamConcurrency
	}
	ns, ctx, ch := newStream(ctx)
	go func() {
		defer close(ch)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for {
			e, ok := s.Next()
			if !ok {
				break
			}
			e := e
			g.Go(func() error {
				blob, keep, err := f(e.Blob)
				if err != nil {
					return err
				}
				if !keep {
					return nil
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				case ch <- TileEntry{Coord: e.Coord, Blob: blob}:
				}
				return nil
			})
		}
		ns.errs.set(g.Wait())
		ns.errs.set(s.Err())
	}()
	return ns
}

// ForEachSync drains the stream synchronously, calling f for every entry.
func (s *TileStream) ForEachSync(f func(TileEntry)) error {
	for {
		e, ok := s.Next()
		if !ok {
			break
		}
		f(e)
	}
	return s.Err()
}

// Collect materializes the stream into a slice.
func (s *TileStream) Collect() ([]TileEntry, error) {
	var out []TileEntry
	err := s.ForEachSync(func(e TileEntry) { out = append(out, e) })
	return out, err
}
