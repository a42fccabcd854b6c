package cmn

// URL Query "?width=&force=&engine=&path=&url="
const (
	URLParamWidth  = "width"  // requested rendition width; 0 = base passthrough
	URLParamForce  = "force"  // bypass local cache, re-download
	URLParamEngine = "engine" // alternate transform dispatch (png engine=1)
	URLParamPath   = "path"   // sub-path folded into the object name via the separator
	URLParamURL    = "url"    // absolute URL to fetch, by-URL serve mode
)

// Header Key enum
const (
	HeaderContentType   = "Content-Type"
	HeaderCacheControl  = "Cache-Control"
	HeaderAuthorization = "authorization"
	HeaderConnection    = "Connection"
)

// Content-Type enum the Transform Engine (C1) dispatches on.
const (
	MIMEJPEG  = "image/jpeg"
	MIMEJPG   = "image/jpg"
	MIMEPNG   = "image/png"
	MIMEWebP  = "image/webp"
	MIMEGIF   = "image/gif"
	MIMESVG   = "image/svg+xml"
	MIMEMP4   = "video/mp4"
	MIMEOctet = "application/octet-stream"
	MIMEJSON  = "application/json"
	MIMEText  = "text/plain"
	MIMEHTML  = "text/html"
)

// NameSep is the on-disk naming contract: the unambiguous separator used
// to fold a sub-path into an Object's name (replaces "/"; spaces are kept
// as they are).
const NameSep = "-_-"

// DefaultAdminToken matches the source's default when ADMIN_TOKEN is unset.
const DefaultAdminToken = "admin"

// DefaultCacheMaxAge is the max-age applied to origins the config doesn't
// give an explicit cache policy, and to the synthetic "misc" origin used by
// free-URL objects.
const DefaultCacheMaxAge = 31536000

