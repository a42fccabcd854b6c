// Command imgopt is the fetch-transform-cache proxy's entrypoint: load
// config, wire C1-C7 together, and serve.
package main

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/go-resty/resty/v2"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/holaplex/imgopt/cdn"
	"github.com/holaplex/imgopt/cmn"
	"github.com/holaplex/imgopt/contentstore"
	"github.com/holaplex/imgopt/object"
	"github.com/holaplex/imgopt/origin"
	"github.com/holaplex/imgopt/retry"
	"github.com/holaplex/imgopt/server"
	"github.com/holaplex/imgopt/transform"
	"github.com/holaplex/imgopt/twitter"
)

func main() {
	app := cli.NewApp()
	app.Name = "imgopt"
	app.Usage = "image-transform caching proxy"
	app.Commands = []cli.Command{
		{
			Name:  "serve",
			Usage: "run the proxy",
			Action: func(*cli.Context) error {
				return serve()
			},
		},
	}
	app.Action = func(c *cli.Context) error {
		return serve()
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := cmn.Load(cmn.ConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()
	sugar := log.Sugar()

	httpClient := resty.New().
		SetTimeout(cfg.ReqTimeoutDuration()).
		SetHeader("User-Agent", cfg.UserAgent)
	kvClient := retry.New(httpClient, cfg.KVStoreURI, sugar)
	store := contentstore.New(sugar)
	transformer := transform.New(sugar)
	validator := origin.New(cfg)
	pipeline := object.NewPipeline(cfg, httpClient, store, kvClient, transformer, sugar)

	cdnClient, err := buildCDNClient(cfg, store, kvClient, validator, sugar)
	if err != nil {
		sugar.Warnw("cloudfront client unavailable, /create_invalidation will error per-request", "err", err)
	}

	twitterClient := twitter.New(resty.New().SetTimeout(cfg.ReqTimeoutDuration()), cmn.TwitterBearerToken())
	if !twitterClient.Enabled() {
		sugar.Warnw("env var TWITTER_BEARER_TOKEN not found. Twitter endpoint will not work")
	}

	srv := server.New(cfg, validator, pipeline, cdnClient, twitterClient, cmn.AdminToken(), sugar)
	app := srv.App()

	sugar.Infow("listening", "port", cfg.Port, "workers", cfg.Workers)
	return app.Listen(fmt.Sprintf(":%d", cfg.Port))
}

func buildCDNClient(cfg *cmn.Config, store *contentstore.Store, kvClient *retry.Client, validator *origin.Validator, log *zap.SugaredLogger) (*cdn.Client, error) {
	distributionID := ""
	if cfg.Cloudfront != nil {
		distributionID = cfg.Cloudfront.DistributionID
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return cdn.New(nil, distributionID, store, kvClient, validator, cfg.StoragePath, log), err
	}
	cf := cloudfront.NewFromConfig(awsCfg)
	return cdn.New(cf, distributionID, store, kvClient, validator, cfg.StoragePath, log), nil
}

func buildLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
