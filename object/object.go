// Package object implements the Object Pipeline (C5): identity, on-disk
// paths, local lookup, retry-aware remote download, validation, transform
// dispatch, and persistence, grounded on original_source/src/object.rs and
// original_source/src/routes/public.rs.
package object

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/holaplex/imgopt/cmn"
	"github.com/holaplex/imgopt/contentstore"
)

// Object is the central, request-scoped entity threaded through the
// pipeline. Per spec §9 it is intentionally a small mutable struct rather
// than a builder chain: every pipeline phase takes *Object and mutates the
// fields that phase owns, making the sequence of steps in Pipeline.Run the
// single place that encodes ordering.
type Object struct {
	Name        string
	Origin      cmn.Origin
	Scale       uint32
	ContentType string
	Data        []byte
	Paths       contentstore.Paths
	Retries     uint32
	Status      int // 0 means "never attempted"
	Headers     http.Header

	// freeURL is set only for objects constructed via NewFromURL: the
	// upstream target is the literal input URL, not origin.Endpoint joined
	// to a decoded name.
	freeURL string
}

// NewFromOrigin constructs an Object identified by (origin, filename), the
// construction variant used by the /{origin}/{filename} endpoint.
func NewFromOrigin(origin cmn.Origin, filename string) *Object {
	return &Object{Name: filename, Origin: origin, ContentType: cmn.MIMEText}
}

// NewFromURL constructs an Object for the free-URL endpoint: the object's
// name is the URL's hash and its Origin is a synthetic "misc" origin whose
// endpoint is the URL itself (spec §4.4 "From a free URL").
func NewFromURL(rawURL string) *Object {
	return &Object{
		Name:        hashString(rawURL),
		Origin:      cmn.Origin{Name: "misc", Endpoint: rawURL, Cache: cmn.CacheConf{MaxAge: cmn.DefaultCacheMaxAge}},
		ContentType: cmn.MIMEText,
		freeURL:     rawURL,
	}
}

// Rename folds a sub-path into the object's name using the on-disk
// separator, matching object.rs::rename.
func (o *Object) Rename(path string) *Object {
	if path == "" {
		return o
	}
	o.Name = o.Name + cmn.NameSep + strings.ReplaceAll(path, "/", cmn.NameSep)
	return o
}

// SetScale records the requested rendition width.
func (o *Object) SetScale(scale uint32) *Object {
	o.Scale = scale
	return o
}

// SetPaths derives and stores this object's on-disk base/modified paths.
func (o *Object) SetPaths(storageRoot string) *Object {
	o.Paths = contentstore.DerivePaths(storageRoot, o.Origin.Name, o.Name, o.Scale)
	return o
}

// URL reconstructs the canonical upstream URL: for origin-identified
// objects this is origin.Endpoint joined to the name with the `-_-`
// separator folded back to `/`; for free-URL objects it is the literal
// input URL (object.rs::get_url, with the free-URL shortcut spec.md §4.4
// layers on top).
func (o *Object) URL() string {
	if o.freeURL != "" {
		return o.freeURL
	}
	decoded := strings.ReplaceAll(o.Name, cmn.NameSep, "/")
	return strings.TrimRight(o.Origin.Endpoint, "/") + "/" + decoded
}

// Hash is the stable content-addressed key used for retry bookkeeping and
// CDN path derivation (spec §3: hash = SHA1(url)).
func (o *Object) Hash() string {
	return hashString(o.URL())
}

// CFPath is the storage-relative path under which this object's renditions
// are served by the CDN, used to build an invalidation batch (C6). A
// trailing wildcard invalidates every scale variant of this object in one
// entry, since CloudFront paths support `*` and the source material did not
// specify a distinct path per scale.
func (o *Object) CFPath() string {
	decoded := strings.ReplaceAll(o.Name, cmn.NameSep, "/")
	return "/" + o.Origin.Name + "/" + decoded + "*"
}

// IsValidContentType reports whether the content type is one the pipeline
// will serve/cache, rejecting the two content types the source treats as
// signs of an invalid upstream response (an HTML or plain-text error page
// served with a 200, for instance).
func IsValidContentType(ct string) bool {
	return ct != cmn.MIMEText && ct != cmn.MIMEHTML
}

func hashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
