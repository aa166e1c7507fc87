package eventlog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// identityDomain versions the addressing scheme. Changing the canonical
// encoding or the digest requires bumping this, which invalidates existing
// addresses and indices.
const identityDomain = "eventlog/event/v1"

// Identify computes the content address of an event.
//
// The event is serialized to JSON, canonicalized per RFC 8785 so that field
// order and whitespace never influence the digest, and hashed with SHA-256
// under a domain-separation prefix. Two semantically identical events always
// map to the same CID regardless of which caller produced them.
//
// Meta.CreatedAt participates in the encoding: identical causal histories
// stored at different logical times yield distinct addresses.
func Identify(ev *Event) (CID, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return Undefined, fmt.Errorf("identify: marshal event: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return Undefined, fmt.Errorf("identify: canonicalize event: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(identityDomain))
	h.Write([]byte{0x00}) // domain/data boundary
	h.Write(canonical)

	return CID(hex.EncodeToString(h.Sum(nil))), nil
}
