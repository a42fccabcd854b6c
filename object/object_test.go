package object

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/holaplex/imgopt/cmn"
)

func TestNewFromOriginURL(t *testing.T) {
	o := cmn.Origin{Name: "ipfs", Endpoint: "https://ipfs.io/ipfs"}
	obj := NewFromOrigin(o, "cid1")
	if got, want := obj.URL(), "https://ipfs.io/ipfs/cid1"; got != want {
		t.Errorf("URL() = %s, want %s", got, want)
	}
}

func TestRenameFoldsSubPathAndURLRoundTrips(t *testing.T) {
	o := cmn.Origin{Name: "ipfs", Endpoint: "https://ipfs.io/ipfs"}
	obj := NewFromOrigin(o, "cid1")
	obj.Rename("a/b/c.png")

	wantName := "cid1" + cmn.NameSep + "a" + cmn.NameSep + "b" + cmn.NameSep + "c.png"
	if obj.Name != wantName {
		t.Errorf("Name = %q, want %q", obj.Name, wantName)
	}

	wantURL := "https://ipfs.io/ipfs/cid1/a/b/c.png"
	if got := obj.URL(); got != wantURL {
		t.Errorf("URL() = %s, want %s", got, wantURL)
	}
}

func TestRenameNoOpOnEmptyPath(t *testing.T) {
	o := cmn.Origin{Name: "ipfs", Endpoint: "https://ipfs.io/ipfs"}
	obj := NewFromOrigin(o, "cid1")
	obj.Rename("")
	if obj.Name != "cid1" {
		t.Errorf("Name = %q, want unchanged %q", obj.Name, "cid1")
	}
}

func TestNewFromURLUsesURLHashAsNameAndMiscOrigin(t *testing.T) {
	raw := "https://example.com/pic.png"
	obj := NewFromURL(raw)
	if obj.Origin.Name != "misc" {
		t.Errorf("Origin.Name = %s, want misc", obj.Origin.Name)
	}
	if obj.URL() != raw {
		t.Errorf("URL() = %s, want %s", obj.URL(), raw)
	}
	sum := sha1.Sum([]byte(raw))
	if obj.Name != hex.EncodeToString(sum[:]) {
		t.Errorf("Name = %s, want sha1(url)", obj.Name)
	}
}

func TestHashIsSHA1OfURL(t *testing.T) {
	o := cmn.Origin{Name: "ipfs", Endpoint: "https://ipfs.io/ipfs"}
	obj := NewFromOrigin(o, "cid1")
	sum := sha1.Sum([]byte("https://ipfs.io/ipfs/cid1"))
	want := hex.EncodeToString(sum[:])
	if obj.Hash() != want {
		t.Errorf("Hash() = %s, want %s", obj.Hash(), want)
	}
}

func TestCFPathDecodesSeparator(t *testing.T) {
	o := cmn.Origin{Name: "ipfs", Endpoint: "https://ipfs.io/ipfs"}
	obj := NewFromOrigin(o, "cid1")
	obj.Rename("sub/path.png")
	want := "/ipfs/cid1/sub/path.png*"
	if got := obj.CFPath(); got != want {
		t.Errorf("CFPath() = %s, want %s", got, want)
	}
}

func TestIsValidContentType(t *testing.T) {
	if IsValidContentType(cmn.MIMEText) {
		t.Error("text/plain should be invalid")
	}
	if IsValidContentType(cmn.MIMEHTML) {
		t.Error("text/html should be invalid")
	}
	if !IsValidContentType(cmn.MIMEPNG) {
		t.Error("image/png should be valid")
	}
}
