package suites

import (
	"encoding/hex"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, cs := range supported {
		byId, err := FromId(cs.Id())
		if err != nil {
			t.Fatal(err)
		} else if byId.Name() != cs.Name() {
			t.Fatalf("unexpected suite for id %v: %v", cs.Id(), byId.Name())
		}
		byName, err := FromName(cs.Name())
		if err != nil {
			t.Fatal(err)
		} else if byName.Id() != cs.Id() {
			t.Fatalf("unexpected suite for name %v: %v", cs.Name(), byName.Id())
		}
	}

	if cs, err := FromName(""); err != nil || cs.Id() != Default().Id() {
		t.Fatal("empty name should select the default suite")
	}
	if _, err := FromName("md5"); err == nil {
		t.Fatal("expected error for unknown suite")
	}
	if _, err := FromId(0xffff); err == nil {
		t.Fatal("expected error for unknown suite id")
	}
}

func TestVectors(t *testing.T) {
	for _, tc := range []struct {
		cs   CipherSuite
		want string
	}{
		{ESASha256{}, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{ESASha3_256{}, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
	} {
		h := tc.cs.Hash()
		h.Write([]byte("abc"))
		got := h.Sum(nil)
		if len(got) != tc.cs.HashSize() {
			t.Fatalf("%v: unexpected digest size %v", tc.cs.Name(), len(got))
		} else if hex.EncodeToString(got) != tc.want {
			t.Fatalf("%v: got %x, want %v", tc.cs.Name(), got, tc.want)
		}
	}
}
