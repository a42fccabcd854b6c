package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/holaplex/imgopt/cmn"
	"github.com/holaplex/imgopt/object"
	"github.com/holaplex/imgopt/transform"
)

// params mirrors routes/public.rs::Params: every query parameter every
// serve endpoint accepts.
type params struct {
	Width  *uint32 `query:"width"`
	Force  bool    `query:"force"`
	Engine uint32  `query:"engine"`
	Path   string  `query:"path"`
	URL    string  `query:"url"`
}

func bindParams(c *fiber.Ctx) (params, error) {
	var p params
	if err := c.QueryParser(&p); err != nil {
		return params{}, cmn.NewErrStatus(fiber.StatusBadRequest, "invalid query parameters: %v", err)
	}
	return p, nil
}

func (p params) engine() transform.Engine {
	return transform.Engine(p.Engine)
}

func objectRunOpts(force, cacheBust bool, engine transform.Engine) object.RunOpts {
	return object.RunOpts{Force: force, CacheBust: cacheBust, Engine: engine}
}
