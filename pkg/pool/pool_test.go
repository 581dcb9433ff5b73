package pool

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
)

func TestBytesBuffer(t *testing.T) {
	buf := BytesBuffer.Get()
	buf.WriteString("dirty")
	BytesBuffer.Put(buf)

	assert.Zero(t, BytesBuffer.Get().Len())
}

func TestHash64(t *testing.T) {
	xxh := Hash64.Get()
	_, _ = xxh.WriteString("{ findNews { total } }")
	sum := xxh.Sum64()
	Hash64.Put(xxh)

	again := Hash64.Get()
	defer Hash64.Put(again)
	_, _ = again.WriteString("{ findNews { total } }")
	assert.Equal(t, sum, again.Sum64())
	assert.Equal(t, xxhash.Sum64String("{ findNews { total } }"), sum)
}
