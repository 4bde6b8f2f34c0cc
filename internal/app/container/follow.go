package container

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"

	"inspectd/internal/app/codec"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
	"inspectd/internal/config"
)

// Handler receives followed packets. Returning an error stops Follow.
type Handler func(p packet.Packet) error

// Follow reads every packet of an uncompressed container and then keeps
// reading as the file grows until ctx is done or the file is removed. A frame
// that is only partially written is retried once more data arrives.
func Follow(ctx context.Context, path string, handle Handler) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if isCompressed(br) {
		return fmt.Errorf("%w: %s", errors.ErrFollowCompressed, path)
	}

	if err := readMagic(br); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(path); err != nil {
		return err
	}

	t := &tail{file: f, offset: int64(len(Magic)), handle: handle}

	if err := t.drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				return t.drain()
			}

			if event.Has(fsnotify.Write) {
				if err := t.drain(); err != nil {
					return err
				}
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			return err
		}
	}
}

// tail tracks the offset just past the last complete frame
type tail struct {
	file   *os.File
	offset int64
	handle Handler
}

func (t *tail) drain() error {
	if _, err := t.file.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}

	frames := codec.NewFrameReader(bufio.NewReader(t.file), config.MaxPayloadSize)

	for {
		frame, err := frames.ReadFrame()
		if err == io.EOF || errors.Is(err, errors.ErrTruncatedFrame) {
			return nil
		}

		if err != nil {
			return err
		}

		t.offset += int64(codec.FrameHeaderSize + len(frame.Payload))

		p, err := codec.Decode(frame.Type, frame.Payload)
		if err != nil {
			continue
		}

		if err := t.handle(p); err != nil {
			return err
		}
	}
}
