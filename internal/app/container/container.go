// Package container reads and writes .sil files: the 4 byte magic "SILF"
// followed by a plain sequence of frames. There is no footer or index.
package container

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"inspectd/internal/app/codec"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
	"inspectd/internal/config"
)

// Magic is the file signature
const Magic = "SILF"

// Extensions of plain and compressed containers
const (
	Extension           = ".sil"
	CompressedExtension = ".sil.zst"
)

// Writer appends packets to a container
type Writer interface {
	Write(p packet.Packet) error
	Flush() error
	Close() error
	Count() int
}

// Reader iterates over the packets of a container
type Reader interface {
	// Next returns the next packet or io.EOF at the end of the stream
	Next() (packet.Packet, error)
	// Skipped reports frames that were read but could not be decoded
	Skipped() int
	Close() error
}

type writer struct {
	out     *bufio.Writer
	closers []io.Closer
	scratch []byte
	count   int
}

// NewWriter writes the magic to w and returns a Writer over it. Closing the
// Writer flushes it but does not close w.
func NewWriter(w io.Writer) (Writer, error) {
	return newWriter(w)
}

func newWriter(w io.Writer, closers ...io.Closer) (*writer, error) {
	out := bufio.NewWriter(w)

	if _, err := out.WriteString(Magic); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToWriteFile, err)
	}

	return &writer{out: out, closers: closers}, nil
}

// Create creates or truncates path and writes a container to it. Paths ending
// in .zst are zstd compressed.
func Create(path string) (Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToWriteFile, err)
	}

	if !IsCompressedPath(path) {
		w, err := newWriter(f, f)
		if err != nil {
			f.Close()
			return nil, err
		}

		return w, nil
	}

	enc, err := newCompressor(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToWriteFile, err)
	}

	w, err := newWriter(enc, enc, f)
	if err != nil {
		enc.Close()
		f.Close()

		return nil, err
	}

	return w, nil
}

// Write appends one frame
func (w *writer) Write(p packet.Packet) error {
	buf, err := codec.AppendFrame(w.scratch[:0], p)
	if err != nil {
		return err
	}

	w.scratch = buf

	if _, err := w.out.Write(buf); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToWriteFile, err)
	}

	w.count++

	return nil
}

// Flush writes buffered frames to the underlying writer
func (w *writer) Flush() error {
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToWriteFile, err)
	}

	return nil
}

// Close flushes and closes the owned resources in order
func (w *writer) Close() error {
	err := w.Flush()

	for _, c := range w.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", errors.ErrFailedToWriteFile, cerr)
		}
	}

	w.closers = nil

	return err
}

// Count returns the number of packets written
func (w *writer) Count() int {
	return w.count
}

// Option configures a Reader
type Option func(*reader)

// WithStrict makes the reader report truncated and oversized frames and
// undecodable payloads as errors instead of ending the stream quietly
func WithStrict() Option {
	return func(r *reader) {
		r.strict = true
	}
}

// WithMaxPayload overrides the payload size ceiling
func WithMaxPayload(n int) Option {
	return func(r *reader) {
		r.maxPayload = n
	}
}

type reader struct {
	frames     *codec.FrameReader
	closers    []io.Closer
	strict     bool
	maxPayload int
	skipped    int
	done       bool
}

// NewReader validates the magic and returns a Reader. zstd compressed input
// is detected from its own magic.
func NewReader(r io.Reader, opts ...Option) (Reader, error) {
	return newReader(r, nil, opts...)
}

func newReader(r io.Reader, closers []io.Closer, opts ...Option) (*reader, error) {
	rd := &reader{
		closers:    closers,
		maxPayload: config.MaxPayloadSize,
	}

	for _, opt := range opts {
		opt(rd)
	}

	br := bufio.NewReader(r)

	if isCompressed(br) {
		dec, err := newDecompressor(br)
		if err != nil {
			return nil, err
		}

		if err := readMagic(dec); err != nil {
			dec.Close()
			return nil, err
		}

		rd.closers = append([]io.Closer{dec}, rd.closers...)
		rd.frames = codec.NewFrameReader(bufio.NewReader(dec), rd.maxPayload)

		return rd, nil
	}

	if err := readMagic(br); err != nil {
		return nil, err
	}

	rd.frames = codec.NewFrameReader(br, rd.maxPayload)

	return rd, nil
}

// Open opens a container file for reading
func Open(path string, opts ...Option) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := newReader(f, []io.Closer{f}, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}

	return r, nil
}

func readMagic(r io.Reader) error {
	var magic [len(Magic)]byte

	n, err := io.ReadFull(r, magic[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: %d bytes", errors.ErrFileTooSmall, n)
		}

		return err
	}

	if string(magic[:]) != Magic {
		return fmt.Errorf("%w: %q", errors.ErrInvalidMagic, magic[:])
	}

	return nil
}

// Next returns the next decodable packet
func (r *reader) Next() (packet.Packet, error) {
	for {
		if r.done {
			return nil, io.EOF
		}

		frame, err := r.frames.ReadFrame()
		if err != nil {
			if err == io.EOF {
				r.done = true
				return nil, io.EOF
			}

			if !r.strict && (errors.Is(err, errors.ErrTruncatedFrame) || errors.Is(err, errors.ErrFrameTooLarge)) {
				r.done = true
				return nil, io.EOF
			}

			return nil, err
		}

		p, err := codec.Decode(frame.Type, frame.Payload)
		if err != nil {
			if r.strict {
				return nil, err
			}

			r.skipped++

			continue
		}

		return p, nil
	}
}

func (r *reader) Skipped() int {
	return r.skipped
}

func (r *reader) Close() error {
	var err error

	for _, c := range r.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	r.closers = nil

	return err
}

// ReadAll drains r. On error the packets read before it are returned too.
func ReadAll(r Reader) ([]packet.Packet, error) {
	var packets []packet.Packet

	for {
		p, err := r.Next()
		if err == io.EOF {
			return packets, nil
		}

		if err != nil {
			return packets, err
		}

		packets = append(packets, p)
	}
}

// ReadFile reads every packet of the container at path
func ReadFile(path string, opts ...Option) ([]packet.Packet, error) {
	r, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ReadAll(r)
}

// WriteFile writes packets to a new container at path
func WriteFile(path string, packets []packet.Packet) error {
	w, err := Create(path)
	if err != nil {
		return err
	}

	for _, p := range packets {
		if err := w.Write(p); err != nil {
			w.Close()
			return err
		}
	}

	return w.Close()
}

// IsCompressedPath reports whether path names a zstd compressed container
func IsCompressedPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}
