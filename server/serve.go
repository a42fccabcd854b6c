package server

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/holaplex/imgopt/cmn"
	"github.com/holaplex/imgopt/object"
	"github.com/holaplex/imgopt/transform"
)

// fetchObject implements GET /{origin}/{filename}.
func (s *Server) fetchObject(c *fiber.Ctx) error {
	originName := c.Params("origin")
	filename := c.Params("filename")

	p, err := bindParams(c)
	if err != nil {
		return err
	}

	resolved, err := s.validator.ResolveOrigin(originName)
	if err != nil {
		return err
	}
	scale, err := s.validator.ValidateWidth(p.Width)
	if err != nil {
		return err
	}
	if err := s.validator.ValidateName(filename); err != nil {
		return err
	}

	obj := object.NewFromOrigin(resolved, filename)
	obj.SetScale(scale)
	if p.Path != "" {
		obj.Rename(p.Path)
	}

	return s.respond(c, obj, p.Force, false, p.engine())
}

// fetchByURL implements GET /?url=..., requiring allow_any_origin.
func (s *Server) fetchByURL(c *fiber.Ctx) error {
	if !s.validator.AllowAnyOrigin() {
		return cmn.NewErrStatus(fiber.StatusBadRequest, "endpoint disabled. Add allow_any_origin=true to your config.toml to enable")
	}

	p, err := bindParams(c)
	if err != nil {
		return err
	}
	if p.URL == "" {
		return cmn.NewErrStatus(fiber.StatusBadRequest, "Please provide an url using the '?url=' query parameter")
	}
	target, err := url.Parse(p.URL)
	if err != nil {
		return cmn.NewErrStatus(fiber.StatusBadRequest, "Unable to parse url: %s - Error: %v", p.URL, err)
	}
	if err := s.validator.ValidateURL(target.String()); err != nil {
		return err
	}
	scale, err := s.validator.ValidateWidth(p.Width)
	if err != nil {
		return err
	}

	obj := object.NewFromURL(target.String())
	obj.SetScale(scale)

	cacheBust := len(target.Query()) != 0
	return s.respond(c, obj, p.Force, cacheBust, p.engine())
}

func (s *Server) respond(c *fiber.Ctx, obj *object.Object, force, cacheBust bool, engine transform.Engine) error {
	res, err := s.pipeline.Run(obj, objectRunOpts(force, cacheBust, engine))
	if err != nil {
		return err
	}
	c.Set(cmn.HeaderCacheControl, fmt.Sprintf("max-age=%d", res.CacheMaxAge))
	c.Set(cmn.HeaderContentType, res.ContentType)
	return c.Send(res.Body)
}
