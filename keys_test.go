package eventlog_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/terraskye/eventlog"
)

func timestampAt(key []byte, offset int) uint64 {
	return binary.BigEndian.Uint64(key[offset : offset+8])
}

func TestDeriveKeys_FullSet(t *testing.T) {
	id := eventlog.CID("aa")
	root := eventlog.CID("bb")
	ev := &eventlog.Event{Meta: eventlog.Meta{
		Parents:   []eventlog.CID{root},
		Root:      root,
		Type:      "a/b/c",
		CreatedAt: 7,
	}}

	keys := eventlog.DeriveKeys(id, ev, false, "/")

	// global + three type scopes + root + head
	if len(keys) != 6 {
		t.Fatalf("expected 6 keys, got %d", len(keys))
	}

	if keys[0][0] != 'g' {
		t.Errorf("expected global prefix, got %q", keys[0][0])
	}
	if got := timestampAt(keys[0], 1); got != 7 {
		t.Errorf("expected timestamp 7 in global key, got %d", got)
	}
	if !bytes.HasSuffix(keys[0], []byte(id)) {
		t.Error("expected global key to end with the identifier")
	}

	scopes := []string{"a", "a/b", "a/b/c"}
	for i, scope := range scopes {
		key := keys[1+i]
		want := append([]byte{'t'}, scope...)
		want = append(want, 0x00)
		if !bytes.HasPrefix(key, want) {
			t.Errorf("expected type key for scope %q, got %q", scope, key)
		}
		if got := timestampAt(key, len(want)); got != 7 {
			t.Errorf("expected timestamp 7 in type key %q, got %d", scope, got)
		}
	}

	rootPrefix := append([]byte{'r'}, root...)
	rootPrefix = append(rootPrefix, 0x00)
	if !bytes.HasPrefix(keys[4], rootPrefix) {
		t.Errorf("expected root-scoped key, got %q", keys[4])
	}

	if !bytes.Equal(keys[5], append([]byte{'h'}, id...)) {
		t.Errorf("expected head marker, got %q", keys[5])
	}
}

func TestDeriveKeys_NoTypeNoRoot(t *testing.T) {
	id := eventlog.CID("aa")
	ev := &eventlog.Event{Meta: eventlog.Meta{CreatedAt: 1}}

	keys := eventlog.DeriveKeys(id, ev, false, "/")

	// global + head only
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

func TestDeriveKeys_HeadOnly(t *testing.T) {
	id := eventlog.CID("aa")

	keys := eventlog.DeriveKeys(id, nil, true, "/")

	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
	if !bytes.Equal(keys[0], append([]byte{'h'}, id...)) {
		t.Errorf("expected head marker, got %q", keys[0])
	}
}

func TestDeriveQueryRange_Global(t *testing.T) {
	r := eventlog.DeriveQueryRange(0, eventlog.Undefined, "", eventlog.Undefined, false)

	if !bytes.Equal(r.GreaterOrEqual, []byte{'g'}) {
		t.Errorf("expected the global family start, got %q", r.GreaterOrEqual)
	}
	if !bytes.Equal(r.LessThan, []byte{'g' + 1}) {
		t.Errorf("expected family fence as upper bound, got %q", r.LessThan)
	}
}

func TestDeriveQueryRange_CheckpointIsExclusiveCompositeKey(t *testing.T) {
	id := eventlog.CID("bb")
	r := eventlog.DeriveQueryRange(9, id, "", eventlog.Undefined, false)

	if r.GreaterOrEqual != nil {
		t.Errorf("expected an exclusive lower bound only, got GreaterOrEqual %q", r.GreaterOrEqual)
	}
	if r.GreaterThan[0] != 'g' {
		t.Errorf("expected global family, got %q", r.GreaterThan[0])
	}
	if got := timestampAt(r.GreaterThan, 1); got != 9 {
		t.Errorf("expected the checkpoint timestamp 9, got %d", got)
	}
	if !bytes.HasSuffix(r.GreaterThan, []byte(id)) {
		t.Error("expected the checkpoint identifier as the tie-breaking suffix")
	}

	// A sibling at the checkpoint's timestamp with a greater identifier
	// still falls inside the range.
	sibling := binary.BigEndian.AppendUint64([]byte{'g'}, 9)
	sibling = append(sibling, "bc"...)
	if bytes.Compare(sibling, r.GreaterThan) <= 0 || bytes.Compare(sibling, r.LessThan) >= 0 {
		t.Errorf("sibling key %q at the checkpoint timestamp fell out of range", sibling)
	}
}

func TestDeriveQueryRange_RootOverridesType(t *testing.T) {
	root := eventlog.CID("bb")
	r := eventlog.DeriveQueryRange(0, eventlog.Undefined, "a", root, false)

	want := append([]byte{'r'}, root...)
	want = append(want, 0x00)
	if !bytes.HasPrefix(r.GreaterOrEqual, want) {
		t.Errorf("expected root family to win, got %q", r.GreaterOrEqual)
	}
}

func TestDeriveQueryRange_Heads(t *testing.T) {
	r := eventlog.DeriveQueryRange(99, eventlog.CID("aa"), "a", eventlog.CID("bb"), true)

	if !bytes.Equal(r.GreaterOrEqual, []byte{'h'}) {
		t.Errorf("expected head family scan, got %q", r.GreaterOrEqual)
	}
	if !bytes.Equal(r.LessThan, []byte{'h' + 1}) {
		t.Errorf("expected head family fence, got %q", r.LessThan)
	}
}

func TestDeriveQueryRange_TypeScopeIsFenced(t *testing.T) {
	// A scan for type "a" must not pick up type "ab".
	r := eventlog.DeriveQueryRange(0, eventlog.Undefined, "a", eventlog.Undefined, false)

	other := append([]byte{'t'}, "ab"...)
	other = append(other, 0x00)
	other = binary.BigEndian.AppendUint64(other, 1)

	if bytes.Compare(other, r.GreaterOrEqual) >= 0 && bytes.Compare(other, r.LessThan) < 0 {
		t.Errorf("key for type %q falls inside the range for type %q", "ab", "a")
	}
}
