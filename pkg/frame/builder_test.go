package frame

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// consumeChunks feeds a serialized frame stream to b one chunk at a time,
// the way a stream's receive path does, and returns the payloads in order.
func consumeChunks(t *testing.T, b Builder, chunks [][]byte) [][]byte {
	t.Helper()
	var buf []byte
	var out [][]byte
	for _, c := range chunks {
		buf = append(buf, c...)
		for {
			f, n, err := b.FromBytes(buf)
			require.NoError(t, err)
			if f == nil {
				break
			}
			buf = buf[n:]
			out = append(out, f.Payload())
		}
	}
	require.Empty(t, buf, "stream should end on a frame boundary")
	return out
}

func split(raw []byte, size int) [][]byte {
	var chunks [][]byte
	for len(raw) > 0 {
		n := size
		if n > len(raw) {
			n = len(raw)
		}
		chunks = append(chunks, raw[:n])
		raw = raw[n:]
	}
	return chunks
}

func builders() map[string]Builder {
	return map[string]Builder{
		"simple":     SimpleBuilder{},
		"checksum32": Checksum32Builder{},
		"websocket":  WebSocketBuilder{},
	}
}

func TestChunkingInvariance(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("a"),
		[]byte("hello world"),
		bytes.Repeat([]byte{0x42}, 300),
	}
	for name, b := range builders() {
		var wire []byte
		for _, p := range payloads {
			f, err := b.New(p)
			require.NoError(t, err)
			wire = append(wire, f.Bytes()...)
		}

		whole := consumeChunks(t, b, [][]byte{wire})
		for _, size := range []int{1, 2, 3, 7, 64, len(wire)} {
			t.Run(fmt.Sprintf("%s/chunk=%d", name, size), func(t *testing.T) {
				got := consumeChunks(t, b, split(wire, size))
				require.Equal(t, len(whole), len(got))
				for i := range whole {
					require.Equal(t, whole[i], got[i])
				}
			})
		}
	}
}

func TestMultiFramePerChunk(t *testing.T) {
	for name, b := range builders() {
		first, err := b.New([]byte("first"))
		require.NoError(t, err, name)
		second, err := b.New([]byte("second"))
		require.NoError(t, err, name)

		wire := append(first.Bytes(), second.Bytes()...)
		got := consumeChunks(t, b, [][]byte{wire})
		require.Len(t, got, 2, name)
		require.Equal(t, []byte("first"), got[0], name)
		require.Equal(t, []byte("second"), got[1], name)
	}
}

func TestNewBuilder(t *testing.T) {
	for _, name := range []string{"simple", "checksum32", "websocket"} {
		b, err := NewBuilder(name, 128)
		require.NoError(t, err)
		_, err = b.New(make([]byte, 129))
		require.ErrorIs(t, err, ErrTooLarge)
	}

	_, err := NewBuilder("morse", 0)
	require.Error(t, err)
}
