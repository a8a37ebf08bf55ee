package signature

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// MaxMessageAge bounds how old a signed request message may be.
const MaxMessageAge = 2 * time.Minute

// RequestMessage binds a request body to the sender's hotkey and a nonce:
// "<hotkey>.<unix nanos>.<blake2b-256 of body>".
func RequestMessage(hotkey string, nonce int64, body []byte) string {
	digest := blake2b.Sum256(body)
	return hotkey + "." + strconv.FormatInt(nonce, 10) + "." + hex.EncodeToString(digest[:])
}

// CheckRequestMessage validates a message produced by RequestMessage against
// the claimed hotkey and the received body.
func CheckRequestMessage(message, hotkey string, body []byte, now time.Time) error {
	parts := strings.Split(message, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed request message")
	}
	if parts[0] != hotkey {
		return fmt.Errorf("message hotkey %s does not match sender %s", parts[0], hotkey)
	}

	nonce, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid nonce: %w", err)
	}
	age := now.Sub(time.Unix(0, nonce))
	if age > MaxMessageAge || age < -MaxMessageAge {
		return fmt.Errorf("request message expired: age %s", age)
	}

	digest := blake2b.Sum256(body)
	if parts[2] != hex.EncodeToString(digest[:]) {
		return fmt.Errorf("body digest mismatch")
	}
	return nil
}
