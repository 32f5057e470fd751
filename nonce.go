package ws

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"hash"
	"strings"
	"sync"
)

const (
	// RFC6455: The value of this header field MUST be a nonce consisting of a
	// randomly selected 16-byte value that has been base64-encoded (see
	// Section 4 of [RFC4648]).  The nonce MUST be selected randomly for each
	// connection.
	nonceKeySize = 16
	nonceSize    = 24 // base64.StdEncoding.EncodedLen(nonceKeySize)

	// RFC6455: The value of this header field is constructed by concatenating
	// /key/, defined above in step 4 in Section 4.2.2, with the string
	// "258EAFA5- E914-47DA-95CA-C5AB0DC85B11", taking the SHA-1 hash of this
	// concatenated value to obtain a 20-byte value and base64- encoding (see
	// Section 4 of [RFC4648]) this 20-byte hash.
	acceptSize = 28 // base64.StdEncoding.EncodedLen(sha1.Size)
)

const webSocketMagic = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var sha1Pool sync.Pool

func acquireSha1() hash.Hash {
	if h := sha1Pool.Get(); h != nil {
		return h.(hash.Hash)
	}
	return sha1.New()
}

func releaseSha1(h hash.Hash) {
	h.Reset()
	sha1Pool.Put(h)
}

// AcceptKey returns the Sec-WebSocket-Accept value for the given client
// Sec-WebSocket-Key value.
func AcceptKey(clientKey string) string {
	sha := acquireSha1()
	defer releaseSha1(sha)

	sha.Write([]byte(clientKey))
	sha.Write([]byte(webSocketMagic))

	var (
		sb  [sha1.Size]byte
		dst [acceptSize]byte
	)
	base64.StdEncoding.Encode(dst[:], sha.Sum(sb[:0]))

	return strings.TrimSpace(string(dst[:]))
}

// CheckAccept reports whether accept is a valid Sec-WebSocket-Accept value
// for the given client key.
func CheckAccept(accept, clientKey string) bool {
	if len(accept) != acceptSize {
		return false
	}
	return AcceptKey(clientKey) == accept
}

// NewNonce returns random base64-encoded nonce suitable for the
// Sec-WebSocket-Key header.
func NewNonce() string {
	var (
		bts [nonceKeySize]byte
		dst [nonceSize]byte
	)
	if _, err := rand.Read(bts[:]); err != nil {
		panic(fmt.Sprintf("rand read error: %s", err))
	}
	base64.StdEncoding.Encode(dst[:], bts[:])
	return string(dst[:])
}
