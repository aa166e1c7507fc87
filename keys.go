package eventlog

import (
	"encoding/binary"
	"strings"
)

// Index key families. Each family owns a single-byte prefix so scans over
// one family can never bleed into another. Within a family and scope,
// lexicographic key order equals time order because timestamps are encoded
// big-endian at a fixed width.
//
// Layouts:
//
//	global:      'g' ts(8) cid
//	type-scoped: 't' segment 0x00 ts(8) cid
//	root-scoped: 'r' root 0x00 ts(8) cid
//	head:        'h' cid
//
// The byte layout is an internal contract between this scheme and whatever
// IndexStore backs it; changing it invalidates existing indices.
const (
	prefixGlobal = 'g'
	prefixHead   = 'h'
	prefixRoot   = 'r'
	prefixType   = 't'
)

// DefaultTypeSeparator splits namespaced event types into scope segments.
const DefaultTypeSeparator = "/"

func appendTimestamp(key []byte, ts uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], ts)
	return append(key, buf[:]...)
}

func globalKey(id CID, ts uint64) []byte {
	key := appendTimestamp([]byte{prefixGlobal}, ts)
	return append(key, id...)
}

func typeKey(id CID, segment string, ts uint64) []byte {
	key := append([]byte{prefixType}, segment...)
	key = append(key, 0x00)
	key = appendTimestamp(key, ts)
	return append(key, id...)
}

func rootKey(id CID, root CID, ts uint64) []byte {
	key := append([]byte{prefixRoot}, root...)
	key = append(key, 0x00)
	key = appendTimestamp(key, ts)
	return append(key, id...)
}

func headKey(id CID) []byte {
	return append([]byte{prefixHead}, id...)
}

// typeScopes expands a separator-split type into every namespace prefix:
// "a/b/c" yields "a", "a/b", "a/b/c". Scoped queries for a namespace then
// match all of its sub-types.
func typeScopes(eventType, separator string) []string {
	if eventType == "" {
		return nil
	}
	segments := strings.Split(eventType, separator)
	scopes := make([]string, len(segments))
	for i := range segments {
		scopes[i] = strings.Join(segments[:i+1], separator)
	}
	return scopes
}

// DeriveKeys returns the index entries to register for an event.
//
// With headOnly false it returns the full set: the global key, one
// type-scoped key per namespace level, the root-scoped key when the event
// carries a root, and the event's own head marker. With headOnly true it
// returns only the head marker, which is how the entries to remove from an
// event's parents are computed once a child attaches to them.
func DeriveKeys(id CID, ev *Event, headOnly bool, separator string) [][]byte {
	if headOnly {
		return [][]byte{headKey(id)}
	}

	ts := ev.Meta.CreatedAt
	keys := [][]byte{globalKey(id, ts)}
	for _, scope := range typeScopes(ev.Meta.Type, separator) {
		keys = append(keys, typeKey(id, scope, ts))
	}
	if ev.Meta.Root.Defined() {
		keys = append(keys, rootKey(id, ev.Meta.Root, ts))
	}
	return append(keys, headKey(id))
}

// upperBound bumps the last byte of a copied prefix, producing the smallest
// key lexicographically greater than every key carrying that prefix.
func upperBound(prefix []byte) []byte {
	out := make([]byte, len(prefix))
	copy(out, prefix)
	out[len(out)-1]++
	return out
}

// DeriveQueryRange builds the scan bounds for a query.
//
// A root filter takes precedence over a type filter; heads selects the head
// family and ignores the checkpoint entirely. A defined checkpoint becomes
// an exclusive lower bound on the full composite key: within a family, keys
// order by timestamp then identifier, so a sibling sharing the checkpoint's
// timestamp but carrying a greater identifier stays in range. The upper
// bound only fences the family/scope, leaving the scan otherwise
// open-ended.
func DeriveQueryRange(sinceTS uint64, sinceID CID, eventType string, root CID, heads bool) Range {
	var prefix []byte
	switch {
	case heads:
		p := []byte{prefixHead}
		return Range{GreaterOrEqual: p, LessThan: upperBound(p)}
	case root.Defined():
		prefix = append([]byte{prefixRoot}, root...)
		prefix = append(prefix, 0x00)
	case eventType != "":
		prefix = append([]byte{prefixType}, eventType...)
		prefix = append(prefix, 0x00)
	default:
		prefix = []byte{prefixGlobal}
	}

	if sinceID.Defined() {
		lower := appendTimestamp(append([]byte(nil), prefix...), sinceTS)
		lower = append(lower, sinceID...)
		return Range{GreaterThan: lower, LessThan: upperBound(prefix)}
	}
	return Range{GreaterOrEqual: prefix, LessThan: upperBound(prefix)}
}
