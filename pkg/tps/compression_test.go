package tps

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecsRoundtrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 64)
	zstd := newZstdCodec()

	tests := []struct {
		name  string
		codec codec
	}{
		{"none", noneCodec{}},
		{"snappy", snappyCodec{}},
		{"zstd", zstd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := tt.codec.compress(data)
			require.NoError(t, err)

			decompressed, err := tt.codec.decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, data, decompressed)
		})
	}
}

func TestZstdCodecReducesSizeOnRepetitiveData(t *testing.T) {
	data := bytes.Repeat([]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), 256)
	zstd := newZstdCodec()

	compressed, err := zstd.compress(data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))
}

func TestCodecForDispatchesByLevel(t *testing.T) {
	shared := newZstdCodec()

	assert.IsType(t, noneCodec{}, codecFor(CompressionNone, shared))
	assert.IsType(t, snappyCodec{}, codecFor(CompressionFast, shared))
	assert.Same(t, shared, codecFor(CompressionBest, shared))
}
