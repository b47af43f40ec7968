package tps

import (
	"fmt"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// codec compresses and decompresses page bytes for one CompressionLevel.
type codec interface {
	compress(data []byte) ([]byte, error)
	decompress(data []byte) ([]byte, error)
}

type noneCodec struct{}

func (noneCodec) compress(data []byte) ([]byte, error)   { return data, nil }
func (noneCodec) decompress(data []byte) ([]byte, error) { return data, nil }

// snappyCodec backs the Warm tier: fast, moderate ratio.
type snappyCodec struct{}

func (snappyCodec) compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

// zstdCodec backs the Cold tier: slower, best ratio. The encoder and
// decoder are pooled since zstd's construction cost is non-trivial and
// GetPage/StorePage run concurrently across pages.
type zstdCodec struct {
	encoderPool sync.Pool
	decoderPool sync.Pool
}

func newZstdCodec() *zstdCodec {
	c := &zstdCodec{}
	c.encoderPool.New = func() any {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			panic(fmt.Sprintf("tps: constructing zstd encoder: %v", err))
		}
		return enc
	}
	c.decoderPool.New = func() any {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			panic(fmt.Sprintf("tps: constructing zstd decoder: %v", err))
		}
		return dec
	}
	return c
}

func (c *zstdCodec) compress(data []byte) ([]byte, error) {
	enc := c.encoderPool.Get().(*zstd.Encoder)
	defer c.encoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

func (c *zstdCodec) decompress(data []byte) ([]byte, error) {
	dec := c.decoderPool.Get().(*zstd.Decoder)
	defer c.decoderPool.Put(dec)
	return dec.DecodeAll(data, nil)
}

func codecFor(level CompressionLevel, zstdShared *zstdCodec) codec {
	switch level {
	case CompressionFast:
		return snappyCodec{}
	case CompressionBest:
		return zstdShared
	default:
		return noneCodec{}
	}
}
