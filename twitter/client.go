// Package twitter implements the Twitter Adapter (C9): a thin projection
// of the Twitter v1.1 users/lookup response onto the shape this proxy's
// /twitter/{handle} endpoint serves.
package twitter

import (
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/holaplex/imgopt/cmn"
)

// lookupURL is a var, not a const, so tests can point it at an
// httptest.Server instead of the real Twitter API.
var lookupURL = "https://api.twitter.com/1.1/users/lookup.json"

// Profile is the projected response shape served by /twitter/{handle}.
type Profile struct {
	Handle         string `json:"handle"`
	AvatarLowres   string `json:"profile_image_url_lowres"`
	AvatarHighres  string `json:"profile_image_url_highres"`
	BannerImageURL string `json:"banner_image_url"`
	Description    string `json:"description"`
}

type lookupEntry struct {
	ScreenName           string        `json:"screen_name"`
	ProfileImageURLHTTPS string        `json:"profile_image_url_https"`
	ProfileBannerURL     string        `json:"profile_banner_url"`
	Description          string        `json:"description"`
	Errors               []lookupError `json:"errors"`
}

type lookupError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client calls the Twitter v1.1 lookup endpoint with a bearer token.
type Client struct {
	http        *resty.Client
	bearerToken string
}

func New(http *resty.Client, bearerToken string) *Client {
	return &Client{http: http, bearerToken: bearerToken}
}

// Enabled reports whether a bearer token was configured; when false the
// HTTP layer must not mount the /twitter route at all.
func (c *Client) Enabled() bool {
	return c.bearerToken != ""
}

// Lookup fetches and projects the profile for handle.
func (c *Client) Lookup(handle string) (*Profile, error) {
	var entries []lookupEntry
	resp, err := c.http.R().
		SetHeader("Accept", cmn.MIMEJSON).
		SetAuthToken(c.bearerToken).
		SetFormData(map[string]string{"screen_name": handle}).
		SetResult(&entries).
		Post(lookupURL)
	if err != nil {
		return nil, cmn.NewErrFailedTo(502, "reach", "twitter", err)
	}
	if resp.IsError() || len(entries) == 0 {
		return nil, cmn.NewErrStatus(502, "unexpected response from twitter")
	}

	entry := entries[0]
	if len(entry.Errors) > 0 {
		return nil, cmn.NewErrStatus(400, entry.Errors[0].Message)
	}

	return &Profile{
		Handle:         entry.ScreenName,
		AvatarLowres:   entry.ProfileImageURLHTTPS,
		AvatarHighres:  strings.ReplaceAll(entry.ProfileImageURLHTTPS, "_normal", ""),
		BannerImageURL: entry.ProfileBannerURL,
		Description:    entry.Description,
	}, nil
}
