package object

import (
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/holaplex/imgopt/cmn"
	"github.com/holaplex/imgopt/contentstore"
	"github.com/holaplex/imgopt/retry"
	"github.com/holaplex/imgopt/transform"
)

// Pipeline composes C1-C4 into the sequential state machine from spec §4.4.
// It holds no per-request state; a single Pipeline is shared across every
// worker and request (spec §5, "config and client handles are immutable
// and shared across workers").
type Pipeline struct {
	cfg         *cmn.Config
	http        *resty.Client
	store       *contentstore.Store
	retry       *retry.Client
	transformer *transform.Transformer
	log         *zap.SugaredLogger
}

func NewPipeline(cfg *cmn.Config, http *resty.Client, store *contentstore.Store, retryClient *retry.Client, transformer *transform.Transformer, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{cfg: cfg, http: http, store: store, retry: retryClient, transformer: transformer, log: log}
}

// Response is what an HTTP handler renders on success.
type Response struct {
	ContentType string
	CacheMaxAge uint32
	Body        []byte
}

// RunOpts carries the per-request knobs the pipeline needs beyond the
// Object itself.
type RunOpts struct {
	Force     bool
	CacheBust bool // e.g. the target URL itself carried query parameters
	Engine    transform.Engine
}

// Run executes steps 2-9 of spec §4.4 against obj, which the caller has
// already constructed and admitted (step 1, C4, happens in the HTTP layer
// so that validation errors never touch the pipeline or the filesystem).
func (p *Pipeline) Run(obj *Object, opts RunOpts) (*Response, error) {
	obj.SetPaths(p.cfg.StoragePath)
	if err := p.store.EnsureDirs(obj.Paths); err != nil {
		return nil, cmn.NewErrFailedTo(500, "create", "cache directories", err)
	}

	opened := p.store.TryOpen(obj.Paths, obj.Scale)
	if opened.Hit {
		obj.Data = opened.Data
		obj.ContentType = opened.ContentType
		obj.Status = 200
	}

	needFetch := opts.Force || opts.CacheBust || len(obj.Data) == 0
	if needFetch {
		retries, err := p.retry.GetRetries(obj.Hash())
		if err != nil {
			return nil, cmn.NewErrFailedTo(500, "read", "retry count", err)
		}
		obj.Retries = retries
		if obj.Retries >= p.cfg.MaxRetries {
			p.log.Errorw("max retries reached for url", "url", obj.URL())
			return nil, cmn.NewErrStatus(400, "Max retries reached. Skipping")
		}
		p.download(obj)
	}

	if obj.Status == 0 {
		p.log.Warnw("error connecting to origin", "origin", obj.Origin.Name)
		return nil, cmn.NewErrStatus(500, "error connecting to origin")
	}

	success := obj.Status >= 200 && obj.Status < 300
	valid := success && IsValidContentType(obj.ContentType)

	var contentType string
	var payload []byte

	if valid {
		validMod := obj.Scale != 0 && obj.Paths.Modified != "" && p.store.Exists(obj.Paths.Modified)
		if obj.Scale == 0 || validMod {
			contentType, payload = obj.ContentType, obj.Data
		} else {
			res, err := p.transformWithFallback(obj, opts.Engine)
			if err != nil {
				return nil, err
			}
			contentType, payload = res.ContentType, res.Data
		}
	} else {
		if err := p.store.RemovePaths(contentstore.Paths{Base: obj.Paths.Base}); err != nil {
			p.log.Warnw("failed removing invalid base", "path", obj.Paths.Base, "err", err)
		}
		if _, err := p.retry.UpdateRetries(obj.Hash(), obj.Retries); err != nil {
			p.log.Warnw("failed updating retries after invalid content", "err", err)
		}
		return nil, cmn.NewErrStatus(500, "Object downloaded from %s/%s is not valid. Trying to proxy to origin", obj.Origin.Name, obj.Name)
	}

	if obj.Scale != 0 && !bytesEqual(payload, obj.Data) {
		if err := p.store.Write(obj.Paths.Modified, payload); err != nil {
			return nil, cmn.NewErrFailedTo(500, "persist", "rendition", err)
		}
	}

	return &Response{ContentType: contentType, CacheMaxAge: obj.Origin.Cache.MaxAge, Body: payload}, nil
}

// download performs step 4-5 of §4.4. Non-2xx and transport failures set
// obj.Status (or leave it unset on transport failure) but never return an
// error: the caller decides what a missing/failed status means in step 6.
func (p *Pipeline) download(obj *Object) {
	start := time.Now()
	url := obj.URL()
	p.log.Infow("downloading from origin", "url", url)

	resp, err := p.http.R().
		SetDoNotParseResponse(true).
		SetHeader("User-Agent", p.cfg.UserAgent).
		Get(url)
	if err != nil {
		p.log.Warnw("error while connecting to origin", "url", url, "err", err)
		return
	}
	raw := resp.RawResponse
	defer raw.Body.Close()

	if raw.StatusCode < 200 || raw.StatusCode >= 300 {
		p.log.Warnw("origin did not return expected object", "url", url, "status", raw.StatusCode)
		obj.Status = raw.StatusCode
		return
	}

	data, err := io.ReadAll(io.LimitReader(raw.Body, p.cfg.MaxBodySizeBytes))
	if err != nil {
		p.log.Warnw("error reading origin response body", "url", url, "err", err)
		return
	}
	obj.Status = raw.StatusCode
	obj.Data = data
	obj.Headers = raw.Header

	ct := raw.Header.Get(cmn.HeaderContentType)
	if ct == "" {
		p.log.Warnw("response has no content-type header", "url", url)
		ct = cmn.MIMEOctet
	}
	obj.ContentType = ct

	p.log.Debugw("downloaded object to memory", "url", url, "took", time.Since(start))

	if err := p.store.Write(obj.Paths.Base, obj.Data); err != nil {
		p.log.Warnw("failed writing base to disk", "path", obj.Paths.Base, "err", err)
	}
}

// transformWithFallback runs step 7's transform dispatch, with the source's
// one-shot re-download-then-fallback policy on "buffer"/"unexpected EOF"
// style decode errors (spec §4.4 step 7, §7 TransformFailure).
func (p *Pipeline) transformWithFallback(obj *Object, engine transform.Engine) (transform.Result, error) {
	res, err := p.transformer.Transform(obj.ContentType, obj.Data, obj.Paths.Base, obj.Scale, engine)
	if err == nil {
		return res, nil
	}

	msg := err.Error()
	if strings.Contains(msg, "buffer") || strings.Contains(msg, "unexpected EOF") {
		p.log.Warnw("transform failed with a truncated-buffer signature, re-downloading once", "err", err)
		p.download(obj)
		if res2, err2 := p.transformer.Transform(obj.ContentType, obj.Data, obj.Paths.Base, obj.Scale, engine); err2 == nil {
			return res2, nil
		}
	}

	p.log.Warnw("transform failed, falling back to base bytes", "err", err)
	return transform.Result{Data: obj.Data, ContentType: obj.ContentType}, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
