// Package server implements the HTTP Surface (C7): thin Fiber handlers
// binding request parameters to the Object Pipeline (C5) and Admin
// Invalidation (C6), kept deliberately free of pipeline logic.
package server

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/holaplex/imgopt/cdn"
	"github.com/holaplex/imgopt/cmn"
	"github.com/holaplex/imgopt/object"
	"github.com/holaplex/imgopt/origin"
	"github.com/holaplex/imgopt/twitter"
)

// Server bundles everything a request handler needs to reach C4-C6.
type Server struct {
	cfg         *cmn.Config
	validator   *origin.Validator
	pipeline    *object.Pipeline
	cdn         *cdn.Client
	twitter     *twitter.Client
	proxyClient *resty.Client
	adminTok    string
	log         *zap.SugaredLogger
}

func New(cfg *cmn.Config, validator *origin.Validator, pipeline *object.Pipeline, cdnClient *cdn.Client, twitterClient *twitter.Client, adminToken string, log *zap.SugaredLogger) *Server {
	return &Server{
		cfg:         cfg,
		validator:   validator,
		pipeline:    pipeline,
		cdn:         cdnClient,
		twitter:     twitterClient,
		proxyClient: resty.New().SetTimeout(30 * time.Second),
		adminTok:    adminToken,
		log:         log,
	}
}

// App builds the Fiber application. cfg.Workers is not applied here: the
// app runs with fasthttp's default concurrency settings.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "imgopt",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(requestid.New())
	app.Use(cors.New())

	app.Get(s.cfg.HealthEndpoint, s.health)
	app.Get("/proxy/:origin/:filename", s.forward)
	app.Get("/:origin/:filename", s.fetchObject)
	app.Get("/", s.fetchByURL)

	if s.twitter.Enabled() {
		app.Get("/twitter/:handle", s.twitterProfile)
	}

	admin := app.Group("/create_invalidation", s.requireAdmin)
	admin.Get("/", s.createInvalidation)
	admin.Post("/", s.createInvalidation)

	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*cmn.Error); ok {
		return c.Status(appErr.Status).JSON(appErr)
	}
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(cmn.NewErrStatus(fe.Code, fe.Message))
	}
	s.log.Errorw("unhandled request error", "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(cmn.NewErrStatus(fiber.StatusInternalServerError, "internal error"))
}

func (s *Server) requireAdmin(c *fiber.Ctx) error {
	if c.Get(cmn.HeaderAuthorization) != s.adminTok {
		return cmn.NewErrStatus(fiber.StatusUnauthorized, "invalid admin token")
	}
	return c.Next()
}

func (s *Server) health(c *fiber.Ctx) error {
	c.Set(cmn.HeaderContentType, cmn.MIMEText)
	return c.SendString("200 OK")
}
