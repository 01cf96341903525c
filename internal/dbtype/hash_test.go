package dbtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFromBytesRoundTrip(t *testing.T) {
	b := make([]byte, HashSize)
	for i := range b {
		b[i] = byte(i)
	}
	h := HashFromBytes(b)
	assert.Equal(t, b, h.Bytes())
}

func TestHashFromBytesPanicsOnWrongLength(t *testing.T) {
	assert.Panics(t, func() {
		HashFromBytes([]byte{1, 2, 3})
	})
}

func TestHashFromHex(t *testing.T) {
	hexStr := "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	h, err := HashFromHex(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, h.String())
}

func TestHashFromHexRejectsBadInput(t *testing.T) {
	_, err := HashFromHex("not-hex")
	assert.Error(t, err)

	_, err = HashFromHex("aabb")
	assert.Error(t, err)
}

func TestHashIsZero(t *testing.T) {
	assert.True(t, ZeroHash.IsZero())
	h, err := HashFromHex("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)
	assert.False(t, h.IsZero())
}

func TestHashValueAndScan(t *testing.T) {
	h, err := HashFromHex("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)

	v, err := h.Value()
	require.NoError(t, err)

	var scanned Hash
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, h, scanned)
}

func TestHashScanRejectsWrongType(t *testing.T) {
	var h Hash
	assert.Error(t, h.Scan("not bytes"))
}

func TestVarBytesValueNilIsSQLNull(t *testing.T) {
	var v VarBytes
	val, err := v.Value()
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestVarBytesScanCopiesInput(t *testing.T) {
	src := []byte{1, 2, 3}
	var v VarBytes
	require.NoError(t, v.Scan(src))
	src[0] = 99
	assert.Equal(t, VarBytes{1, 2, 3}, v)
}

func TestNullHashRoundTrip(t *testing.T) {
	var n NullHash
	val, err := n.Value()
	require.NoError(t, err)
	assert.Nil(t, val)

	h, err := HashFromHex("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)
	n = NullHash{Hash: h, Valid: true}
	val, err = n.Value()
	require.NoError(t, err)

	var scanned NullHash
	require.NoError(t, scanned.Scan(val))
	assert.True(t, scanned.Valid)
	assert.Equal(t, h, scanned.Hash)

	var unscanned NullHash
	require.NoError(t, unscanned.Scan(nil))
	assert.False(t, unscanned.Valid)
}
