package codec

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/salsa20"
)

const (
	// PacketSize is the fixed size of one telemetry datagram.
	PacketSize = 296
	// Magic is the plaintext marker at offset 0 ("G7S0").
	Magic = 0x47375330

	seedOffset = 0x40
	ivXorMask  = 0xDEADBEAF
)

var (
	ErrPacketTooShort = errors.New("telemetry packet too short")
	ErrCipherMismatch = errors.New("decrypted packet has no valid magic")
)

// cipherKey is the fixed protocol key; only the first 32 bytes are used.
var cipherKey = []byte("Simulator Interface Packet GT7 ver 0.0")

// keyStream applies the Salsa20 key stream derived from the nonce seed at
// offset 0x40 of src. The four seed bytes ride outside the key stream so
// that applying the function twice restores the original buffer.
func keyStream(src []byte) []byte {
	seed := binary.LittleEndian.Uint32(src[seedOffset:])
	var nonce [8]byte
	binary.LittleEndian.PutUint32(nonce[0:], seed^ivXorMask)
	binary.LittleEndian.PutUint32(nonce[4:], seed)

	var key [32]byte
	copy(key[:], cipherKey[:32])

	dst := make([]byte, len(src))
	salsa20.XORKeyStream(dst, src, nonce[:], &key)
	copy(dst[seedOffset:seedOffset+4], src[seedOffset:seedOffset+4])
	return dst
}

// Decrypt turns a raw datagram into its plaintext form. The datagram is
// rejected when it is shorter than the fixed packet size or when the
// plaintext magic does not match; both conditions mean the caller should
// discard the datagram.
func Decrypt(raw []byte) ([]byte, error) {
	if len(raw) < PacketSize {
		return nil, ErrPacketTooShort
	}
	plain := keyStream(raw)
	if binary.LittleEndian.Uint32(plain[0:4]) != Magic {
		return nil, ErrCipherMismatch
	}
	return plain, nil
}

// Encrypt is the inverse of Decrypt. The plaintext must carry the nonce
// seed at offset 0x40 and the magic at offset 0. Used by tests and by
// simulators feeding the receiver.
func Encrypt(plain []byte) ([]byte, error) {
	if len(plain) < PacketSize {
		return nil, ErrPacketTooShort
	}
	return keyStream(plain), nil
}
