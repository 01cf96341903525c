// Package dbtype holds the small value types shared by the mapper and the
// store: fixed-size hashes and variable-width big-endian byte blobs that
// round-trip through database/sql without a trait-object boundary.
package dbtype

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
)

// HashSize is the width of every block, transaction and outpoint hash in
// the Kaspa BlockDAG.
const HashSize = 32

// Hash is a 32-byte blob stored and compared by value. It implements
// sql.Scanner/driver.Valuer so gorm can read and write it as a raw BLOB
// column without an intermediate []byte conversion at every call site.
type Hash [HashSize]byte

// ZeroHash is the default, all-zero Hash.
var ZeroHash Hash

// HashFromBytes copies b into a new Hash. It panics if b is not exactly
// HashSize bytes, since every call site constructs a Hash from data the
// node or the database already validated.
func HashFromBytes(b []byte) Hash {
	var h Hash
	if len(b) != HashSize {
		panic(fmt.Sprintf("dbtype: invalid hash length %d", len(b)))
	}
	copy(h[:], b)
	return h
}

// HashFromHex parses a hex-encoded hash, as used by the --ignore-checkpoint
// hash CLI flag and the block_checkpoint Var value.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("dbtype: invalid hash hex %q: %w", s, err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("dbtype: invalid hash length %d", len(b))
	}
	return HashFromBytes(b), nil
}

// Bytes returns a freshly allocated copy of the hash bytes.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// String returns the lower-case hex encoding, matching hex(block_hash) in
// the Var checkpoint value and the node's own hash formatting.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the default value.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Value implements driver.Valuer.
func (h Hash) Value() (driver.Value, error) {
	return h.Bytes(), nil
}

// Scan implements sql.Scanner.
func (h *Hash) Scan(src interface{}) error {
	if src == nil {
		*h = Hash{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("dbtype: cannot scan %T into Hash", src)
	}
	if len(b) != HashSize {
		return fmt.Errorf("dbtype: invalid hash length %d on scan", len(b))
	}
	copy(h[:], b)
	return nil
}

// VarBytes is a variable-width, big-endian byte blob such as blue_work or
// an 8-byte nonce. It is a plain []byte alias with Scan/Value hooks so the
// field-exclusion policy can store a nil VarBytes as SQL NULL.
type VarBytes []byte

// Value implements driver.Valuer.
func (v VarBytes) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return []byte(v), nil
}

// Scan implements sql.Scanner.
func (v *VarBytes) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("dbtype: cannot scan %T into VarBytes", src)
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	*v = cp
	return nil
}

// NullHash is an optional Hash column: many Block columns are
// nullable-by-config per the field-selection policy.
type NullHash struct {
	Hash  Hash
	Valid bool
}

// Value implements driver.Valuer.
func (n NullHash) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Hash.Bytes(), nil
}

// Scan implements sql.Scanner.
func (n *NullHash) Scan(src interface{}) error {
	if src == nil {
		n.Valid = false
		n.Hash = Hash{}
		return nil
	}
	if err := n.Hash.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
