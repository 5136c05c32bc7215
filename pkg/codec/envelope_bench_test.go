//go:build bench
// +build bench

package codec

import (
	"bytes"
	"testing"
	"time"
)

var benchmarks = []struct {
	name    string
	key     []byte
	archive []byte
}{
	{
		name:    "small",
		key:     []byte("user:2"),
		archive: bytes.Repeat([]byte("a"), 128),
	},
	{
		name:    "medium",
		key:     []byte("user:124493"),
		archive: bytes.Repeat([]byte("a"), 4096),
	},
	{
		name:    "large",
		key:     []byte("user:124493"),
		archive: bytes.Repeat([]byte("a"), 65536),
	},
}

func BenchmarkEnvelopeCodec_Encode(b *testing.B) {
	codec := NewEnvelopeCodec()
	now := time.Now()

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(bm.archive)))
			for i := 0; i < b.N; i++ {
				if _, err := codec.Encode(bm.key, bm.archive, now); err != nil {
					b.Fatalf("Encode failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkEnvelopeCodec_DecodeValidate(b *testing.B) {
	codec := NewEnvelopeCodec()

	for _, bm := range benchmarks {
		encoded, err := codec.Encode(bm.key, bm.archive, time.Now())
		if err != nil {
			b.Fatalf("Encode failed: %v", err)
		}

		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(encoded)))
			for i := 0; i < b.N; i++ {
				env, err := codec.Decode(encoded)
				if err != nil {
					b.Fatalf("Decode failed: %v", err)
				}
				if err := env.Validate(); err != nil {
					b.Fatalf("Validate failed: %v", err)
				}
			}
		})
	}
}
