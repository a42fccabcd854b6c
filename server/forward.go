package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/holaplex/imgopt/cmn"
)

// forward implements GET /proxy/{origin}/{filename}: a transparent,
// unbuffered-in-spirit proxy that forwards to the origin and copies back
// every response header except Connection.
func (s *Server) forward(c *fiber.Ctx) error {
	originName := c.Params("origin")
	filename := c.Params("filename")

	resolved, err := s.validator.ResolveOrigin(originName)
	if err != nil {
		return err
	}

	target := resolved.Endpoint + "/" + filename
	resp, err := s.proxyClient.R().SetDoNotParseResponse(true).Get(target)
	if err != nil {
		return cmn.NewErrFailedTo(fiber.StatusInternalServerError, "reach", "origin", err)
	}
	raw := resp.RawResponse
	defer raw.Body.Close()

	for name, values := range raw.Header {
		if name == cmn.HeaderConnection {
			continue
		}
		for _, v := range values {
			c.Set(name, v)
		}
	}
	c.Status(raw.StatusCode)
	return c.SendStream(raw.Body)
}
