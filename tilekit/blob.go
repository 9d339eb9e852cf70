package tilekit

// Blob is an immutable, opaque byte payload. The underlying slice is never
// mutated after construction; callers that need to change contents build a
// new Blob rather than writing through a shared one.
type Blob struct {
	data []byte
}

// NewBlob wraps b without copying. The caller must not mutate b afterwards.
func NewBlob(b []byte) Blob {
	return Blob{data: b}
}

// BlobFromString returns a Blob holding a copy of s's bytes.
func BlobFromString(s string) Blob {
	return Blob{data: []byte(s)}
}

// Bytes returns the underlying byte slice. Callers must treat it as
// read-only.
func (b Blob) Bytes() []byte {
	return b.data
}

// String returns the payload decoded as UTF-8.
func (b Blob) String() string {
	return string(b.data)
}

// Len returns the payload length in bytes.
func (b Blob) Len() int {
	return len(b.data)
}

// Slice returns the half-open byte range [r.Offset, r.Offset+r.Length) as a
// new Blob sharing the same backing array.
func (b Blob) Slice(r ByteRange) Blob {
	return Blob{data: b.data[r.Offset : r.Offset+r.Length]}
}

// ByteRange is a half-open byte range within a container.
type ByteRange struct {
	Offset uint64
	Length uint64
}

// End returns Offset+Length.
func (r ByteRange) End() uint64 {
	return r.Offset + r.Length
}
