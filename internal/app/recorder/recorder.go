package recorder

import (
	"sync"
	"time"

	"inspectd/internal/app/container"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
	"inspectd/internal/config/logger"
)

// Recorder persists received packets to a container file. Writes are
// buffered and flushed once per interval after the first unflushed packet.
type Recorder interface {
	Record(p packet.Packet) error
	Count() int
	Path() string
	Close() error
}

type recorder struct {
	path     string
	interval time.Duration
	writer   container.Writer
	timer    *time.Timer
	closed   bool
	mu       sync.Mutex
	log      logger.Logger
}

// New creates path and records into it
func New(path string, interval time.Duration, log logger.Logger) (Recorder, error) {
	w, err := container.Create(path)
	if err != nil {
		return nil, err
	}

	return newRecorder(path, interval, w, log), nil
}

func newRecorder(path string, interval time.Duration, w container.Writer, log logger.Logger) *recorder {
	r := &recorder{
		path:     path,
		interval: interval,
		writer:   w,
		log:      log.WithComponent("RECORDER"),
	}

	r.log.Info().Msgf("Recording to %s", path)

	return r
}

func (r *recorder) Record(p packet.Packet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.ErrRecorderClosed
	}

	if err := r.writer.Write(p); err != nil {
		return err
	}

	if r.timer == nil {
		r.timer = time.AfterFunc(r.interval, r.flush)
	}

	return nil
}

// flush writes buffered frames to disk
func (r *recorder) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timer = nil

	if r.closed {
		return
	}

	if err := r.writer.Flush(); err != nil {
		r.log.Error().Err(err).Msgf("Failed to flush %s", r.path)
	}
}

func (r *recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writer.Count()
}

func (r *recorder) Path() string {
	return r.path
}

// Close flushes and closes the file. Further records fail.
func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	r.log.Info().Msgf("Recorded %d packet(s) to %s", r.writer.Count(), r.path)

	return r.writer.Close()
}
