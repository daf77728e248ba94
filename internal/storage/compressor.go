package storage

import (
	"fmt"
	"medhistory/internal/storage/interfaces"

	"github.com/klauspost/compress/zstd"
)

// archiveFrameLimit bounds the decoded size of one archive file.
const archiveFrameLimit = 256 << 20

// ArchiveCodec compresses archive files. Encoder and decoder are safe for
// concurrent use by the EncodeAll/DecodeAll calls below.
type ArchiveCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (c *ArchiveCodec) Compress(plain []byte) ([]byte, error) {
	return c.encoder.EncodeAll(plain, make([]byte, 0, len(plain)/4)), nil
}

func (c *ArchiveCodec) Decompress(packed []byte) ([]byte, error) {
	plain, err := c.decoder.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("decode archive frame: %w", err)
	}
	return plain, nil
}

func (c *ArchiveCodec) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderCRC(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(archiveFrameLimit),
	)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ArchiveCodec{encoder: encoder, decoder: decoder}, nil
}
