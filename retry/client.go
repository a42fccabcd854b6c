// Package retry implements the Retry Counter Client (C3): a thin wrapper
// over the external KV service's {GET,POST} /api/<hash> contract.
package retry

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Count mirrors the KV-stored RetryCount record.
type Count struct {
	URL     string `json:"url"`
	Retries uint32 `json:"retries"`
}

type postBody struct {
	Retries uint32 `json:"retries"`
}

// Client talks to the external, process-outliving KV service. It is
// immutable and shared across every worker.
type Client struct {
	http    *resty.Client
	baseURI string
	log     *zap.SugaredLogger
}

func New(http *resty.Client, kvstoreURI string, log *zap.SugaredLogger) *Client {
	return &Client{http: http, baseURI: kvstoreURI, log: log}
}

func (c *Client) url(hash string) string {
	return fmt.Sprintf("%s/api/%s", c.baseURI, hash)
}

// GetRetries fetches the current retry count for hash. A 404 is treated
// as zero and seeds the counter via UpdateRetries(1). A 500 or transport
// failure is logged and leaves current unchanged (fail-open).
func (c *Client) GetRetries(hash string) (uint32, error) {
	resp, err := c.http.R().
		SetHeader("Accept", "application/json").
		Get(c.url(hash))
	if err != nil {
		c.log.Warnw("error contacting kv store", "hash", hash, "err", err)
		return 0, nil
	}
	switch resp.StatusCode() {
	case 404:
		return c.UpdateRetries(hash, 0)
	case 200:
		var count Count
		if err := decode(resp.Body(), &count); err != nil {
			return 0, err
		}
		return count.Retries, nil
	case 500:
		c.log.Errorw("kv store internal error", "hash", hash)
		return 0, nil
	default:
		c.log.Warnw("unexpected kv store response", "hash", hash, "status", resp.StatusCode())
		return 0, nil
	}
}

// UpdateRetries increments current by one and POSTs the new value,
// returning whatever the KV store echoes back after persisting it.
// A transport failure is surfaced — callers treat it as an internal error,
// unlike GetRetries's fail-open policy, because this is only ever called
// to record an observed failure and silently dropping it would understate
// the retry count.
func (c *Client) UpdateRetries(hash string, current uint32) (uint32, error) {
	next := current + 1
	c.log.Warnw("updating retries", "hash", hash, "retries", next)
	resp, err := c.http.R().
		SetHeader("Accept", "application/json").
		SetBody(postBody{Retries: next}).
		Post(c.url(hash))
	if err != nil {
		return 0, fmt.Errorf("posting retry count to kv store: %w", err)
	}
	var count Count
	if err := decode(resp.Body(), &count); err != nil {
		return 0, err
	}
	return count.Retries, nil
}

// ResetRetries zeroes the counter, used by the admin invalidation flow (C6).
func (c *Client) ResetRetries(hash string) error {
	_, err := c.http.R().
		SetHeader("Accept", "application/json").
		SetBody(postBody{Retries: 0}).
		Post(c.url(hash))
	return err
}

func decode(body []byte, v *Count) error {
	return jsonUnmarshal(body, v)
}
