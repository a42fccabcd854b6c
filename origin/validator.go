// Package origin implements the Origin/Parameter Validator (C4): origin
// allow-listing, width admission, and URL/object-name deny-list checks.
package origin

import (
	"strings"

	"github.com/holaplex/imgopt/cmn"
)

// Validator holds the configured allow-lists. It is immutable once built
// from config and is safe to share across every worker and request.
type Validator struct {
	origins        []cmn.Origin
	allowedSizes   []uint32
	urlDenyList    []string
	objDenyList    []string
	allowAnyOrigin bool
}

func New(cfg *cmn.Config) *Validator {
	return &Validator{
		origins:        cfg.Origins,
		allowedSizes:   cfg.AllowedSizes,
		urlDenyList:    cfg.URLDenyList,
		objDenyList:    cfg.ObjDenyList,
		allowAnyOrigin: cfg.AllowAnyOrigin,
	}
}

// ResolveOrigin performs a linear, config-order lookup by exact name.
// First match wins, preserving config order for tie-breaks.
func (v *Validator) ResolveOrigin(name string) (cmn.Origin, error) {
	for _, o := range v.origins {
		if o.Name == name {
			return o, nil
		}
	}
	return cmn.Origin{}, cmn.NewErr("Received value %s for param origin is not allowed", name)
}

// AllowAnyOrigin gates the by-URL endpoint.
func (v *Validator) AllowAnyOrigin() bool { return v.allowAnyOrigin }

// ValidateWidth accepts any width when allowed_sizes is empty/unset;
// otherwise only a width present in the list. An absent width is always
// treated as 0 (base passthrough) and always accepted.
func (v *Validator) ValidateWidth(width *uint32) (uint32, error) {
	if width == nil {
		return 0, nil
	}
	if len(v.allowedSizes) == 0 {
		return *width, nil
	}
	for _, s := range v.allowedSizes {
		if s == *width {
			return *width, nil
		}
	}
	return 0, cmn.NewErr("Received value %d for param width is not allowed", *width)
}

// ValidateURL rejects u if any configured deny-list entry appears as a
// substring of it — a deliberately coarse, documented trade-off.
func (v *Validator) ValidateURL(u string) error {
	for _, rule := range v.urlDenyList {
		if rule != "" && strings.Contains(u, rule) {
			return cmn.NewErr("url contains denied fragment %q", rule)
		}
	}
	return nil
}

// ValidateName rejects an object name containing any obj_deny_list
// substring entry, the same rejection shape as ValidateURL. obj_deny_list
// is named in config (spec §6.3) but never wired by the original source;
// this is the supplemental wiring (SPEC_FULL §3).
func (v *Validator) ValidateName(name string) error {
	for _, rule := range v.objDenyList {
		if rule != "" && strings.Contains(name, rule) {
			return cmn.NewErr("object name contains denied fragment %q", rule)
		}
	}
	return nil
}
