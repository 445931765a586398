package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortHex(t *testing.T) {
	assert.Equal(t, "0x1234..cdef", ShortHex("0x1234567890abcdef"))
	assert.Equal(t, "0x12", ShortHex("0x12"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "999", FormatAmount(999))
	assert.Equal(t, "1,000", FormatAmount(1000))
	assert.Equal(t, "18,446,744,073,709,551,615", FormatAmount(^uint64(0)))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "128 B", FormatSize(128))
	assert.Equal(t, "1.5 KiB", FormatSize(1536))
	assert.Equal(t, "2.0 MiB", FormatSize(2<<20))
}
