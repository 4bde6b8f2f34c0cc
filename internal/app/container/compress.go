package container

import (
	"bufio"
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

func isCompressed(br *bufio.Reader) bool {
	head, err := br.Peek(len(zstdMagic))
	if err != nil {
		return false
	}

	return bytes.Equal(head, zstdMagic)
}

func newCompressor(w io.Writer) (*zstd.Encoder, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

type decompressor struct {
	*zstd.Decoder
}

func (d decompressor) Close() error {
	d.Decoder.Close()
	return nil
}

func newDecompressor(r io.Reader) (decompressor, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return decompressor{}, err
	}

	return decompressor{dec}, nil
}
