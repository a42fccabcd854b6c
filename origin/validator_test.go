package origin

import (
	"testing"

	"github.com/holaplex/imgopt/cmn"
)

func testConfig() *cmn.Config {
	return &cmn.Config{
		Origins: []cmn.Origin{
			{Name: "ipfs", Endpoint: "https://ipfs.io/ipfs"},
			{Name: "arweave", Endpoint: "https://arweave.net"},
		},
		AllowedSizes:   []uint32{400, 800},
		URLDenyList:    []string{"evil.example"},
		ObjDenyList:    []string{"forbidden"},
		AllowAnyOrigin: true,
	}
}

func TestResolveOriginFirstMatchWins(t *testing.T) {
	v := New(testConfig())
	o, err := v.ResolveOrigin("ipfs")
	if err != nil {
		t.Fatalf("ResolveOrigin: %v", err)
	}
	if o.Endpoint != "https://ipfs.io/ipfs" {
		t.Errorf("Endpoint = %s", o.Endpoint)
	}
}

func TestResolveOriginUnknown(t *testing.T) {
	v := New(testConfig())
	_, err := v.ResolveOrigin("unknown")
	if err == nil {
		t.Fatal("expected an error for an unconfigured origin")
	}
	appErr, ok := err.(*cmn.Error)
	if !ok {
		t.Fatalf("expected *cmn.Error, got %T", err)
	}
	if appErr.Status != 400 {
		t.Errorf("Status = %d, want 400", appErr.Status)
	}
}

func TestValidateWidthAbsentAlwaysAccepted(t *testing.T) {
	v := New(testConfig())
	w, err := v.ValidateWidth(nil)
	if err != nil || w != 0 {
		t.Errorf("ValidateWidth(nil) = (%d, %v), want (0, nil)", w, err)
	}
}

func TestValidateWidthAllowList(t *testing.T) {
	v := New(testConfig())
	width := uint32(400)
	if w, err := v.ValidateWidth(&width); err != nil || w != 400 {
		t.Errorf("ValidateWidth(400) = (%d, %v), want (400, nil)", w, err)
	}

	bad := uint32(123)
	if _, err := v.ValidateWidth(&bad); err == nil {
		t.Error("expected an error for a width outside the allow-list")
	}
}

func TestValidateWidthEmptyAllowListAcceptsAny(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedSizes = nil
	v := New(cfg)
	width := uint32(12345)
	if w, err := v.ValidateWidth(&width); err != nil || w != 12345 {
		t.Errorf("ValidateWidth(12345) = (%d, %v), want (12345, nil) with no allow-list configured", w, err)
	}
}

func TestValidateURLDenyList(t *testing.T) {
	v := New(testConfig())
	if err := v.ValidateURL("https://evil.example/payload"); err == nil {
		t.Error("expected a denied URL to be rejected")
	}
	if err := v.ValidateURL("https://ipfs.io/ipfs/cid1"); err != nil {
		t.Errorf("unexpected rejection: %v", err)
	}
}

func TestValidateNameDenyList(t *testing.T) {
	v := New(testConfig())
	if err := v.ValidateName("forbidden-file.png"); err == nil {
		t.Error("expected a denied object name to be rejected")
	}
	if err := v.ValidateName("clean-file.png"); err != nil {
		t.Errorf("unexpected rejection: %v", err)
	}
}

func TestAllowAnyOrigin(t *testing.T) {
	v := New(testConfig())
	if !v.AllowAnyOrigin() {
		t.Error("expected AllowAnyOrigin() to reflect config")
	}
}
