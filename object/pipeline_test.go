package object

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/holaplex/imgopt/cmn"
	"github.com/holaplex/imgopt/contentstore"
	"github.com/holaplex/imgopt/retry"
	"github.com/holaplex/imgopt/transform"
)

func testPipeline(t *testing.T, kvURL string) (*Pipeline, *cmn.Config) {
	t.Helper()
	cfg := &cmn.Config{
		StoragePath:      t.TempDir(),
		MaxRetries:       5,
		MaxBodySizeBytes: 10_000_000,
		UserAgent:        "imgopt-test/1",
		KVStoreURI:       kvURL,
	}
	log := zap.NewNop().Sugar()
	httpClient := resty.New()
	store := contentstore.New(log)
	transformer := transform.New(log)
	retryClient := retry.New(httpClient, cfg.KVStoreURI, log)
	return NewPipeline(cfg, httpClient, store, retryClient, transformer, log), cfg
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// Scenario 1 from spec §8: a pre-populated rendition is served with no
// network call at all, neither to the origin nor the KV store.
func TestPipelineRenditionCacheHitNoNetwork(t *testing.T) {
	failAny := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call to %s", r.URL)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failAny.Close()

	p, cfg := testPipeline(t, failAny.URL)
	origin := cmn.Origin{Name: "ipfs", Endpoint: failAny.URL, Cache: cmn.CacheConf{MaxAge: 31536000}}

	paths := contentstore.DerivePaths(cfg.StoragePath, "ipfs", "cid1", 400)
	if err := os.MkdirAll(filepath.Dir(paths.Modified), 0o755); err != nil {
		t.Fatal(err)
	}
	// Real PNG bytes, not arbitrary text: content-type guessing (via the
	// `file` binary) must resolve this to an image type or the pipeline's
	// IsValidContentType check would treat the cache hit as invalid.
	want := testPNG(t, 400, 400)
	if err := os.WriteFile(paths.Modified, want, 0o644); err != nil {
		t.Fatal(err)
	}

	obj := NewFromOrigin(origin, "cid1").SetScale(400)
	res, err := p.Run(obj, RunOpts{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(res.Body, want) {
		t.Errorf("Body = %q, want %q", res.Body, want)
	}
	if res.CacheMaxAge != 31536000 {
		t.Errorf("CacheMaxAge = %d, want 31536000", res.CacheMaxAge)
	}
}

// Scenario 4: once the KV-observed retry count reaches max_retries, the
// pipeline must not perform a new upstream GET.
func TestPipelineMaxRetriesShortCircuits(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be contacted once max retries is reached")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	kv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"x","retries":5}`))
	}))
	defer kv.Close()

	p, _ := testPipeline(t, kv.URL)
	origin := cmn.Origin{Name: "ipfs", Endpoint: upstream.URL}
	obj := NewFromOrigin(origin, "cid1").SetScale(0)

	_, err := p.Run(obj, RunOpts{})
	if err == nil {
		t.Fatal("expected Max retries reached error")
	}
	appErr, ok := err.(*cmn.Error)
	if !ok || appErr.Status != 400 {
		t.Errorf("err = %v, want a 400 cmn.Error", err)
	}
}

// Scenario 5: an upstream 200 with an html/text body is treated as invalid
// content — base is removed, the KV counter is bumped, and a 500 is
// returned with the "trying to proxy to origin" message.
func TestPipelineInvalidContentTriggersRetryBump(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer upstream.Close()

	var posted bool
	kv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPost:
			posted = true
			w.Write([]byte(`{"retries":1}`))
		}
	}))
	defer kv.Close()

	p, cfg := testPipeline(t, kv.URL)
	origin := cmn.Origin{Name: "ipfs", Endpoint: upstream.URL}
	obj := NewFromOrigin(origin, "cid1").SetScale(0)

	_, err := p.Run(obj, RunOpts{})
	if err == nil {
		t.Fatal("expected an invalid-content error")
	}
	appErr, ok := err.(*cmn.Error)
	if !ok || appErr.Status != 500 {
		t.Errorf("err = %v, want a 500 cmn.Error", err)
	}
	if !posted {
		t.Error("expected the retry counter to be bumped via a KV POST")
	}

	base := contentstore.DerivePaths(cfg.StoragePath, "ipfs", "cid1", 0).Base
	if _, statErr := os.Stat(base); !os.IsNotExist(statErr) {
		t.Error("expected the invalid base file to be removed")
	}
}

// End-to-end: a fresh download of a valid PNG is transformed, the
// rendition is persisted, and a subsequent request with force=false is
// served from the modified file without touching the network again.
func TestPipelineDownloadTransformThenCacheHit(t *testing.T) {
	pngData := testPNG(t, 400, 200)
	var hits int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer upstream.Close()

	// No stored record: GET is a 404 and the seeding POST is echoed back.
	kv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"retries":1}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer kv.Close()

	p, _ := testPipeline(t, kv.URL)
	origin := cmn.Origin{Name: "ipfs", Endpoint: upstream.URL, Cache: cmn.CacheConf{MaxAge: 3600}}

	obj := NewFromOrigin(origin, "cid1").SetScale(100)
	res, err := p.Run(obj, RunOpts{})
	if err != nil {
		t.Fatalf("Run (first request): %v", err)
	}
	if res.ContentType != "image/png" {
		t.Errorf("ContentType = %s, want image/png", res.ContentType)
	}
	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}

	obj2 := NewFromOrigin(origin, "cid1").SetScale(100)
	res2, err := p.Run(obj2, RunOpts{})
	if err != nil {
		t.Fatalf("Run (second request): %v", err)
	}
	if !bytes.Equal(res2.Body, res.Body) {
		t.Error("expected the second request to reproduce the persisted rendition")
	}
	if hits != 1 {
		t.Errorf("hits = %d, want still 1 (second request should be a local hit)", hits)
	}
}
