package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/holaplex/imgopt/cmn"
)

// twitterProfile implements GET /twitter/{handle} (spec §4.8, §6.1).
func (s *Server) twitterProfile(c *fiber.Ctx) error {
	handle := c.Params("handle")
	profile, err := s.twitter.Lookup(handle)
	if err != nil {
		return err
	}
	c.Set(cmn.HeaderCacheControl, "max-age="+strconv.FormatUint(uint64(twitterCacheMaxAge(s.cfg)), 10))
	return c.JSON(profile)
}

func twitterCacheMaxAge(cfg *cmn.Config) uint32 {
	if cfg.Twitter == nil {
		return 0
	}
	return cfg.Twitter.Cache.MaxAge
}
