package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/eringen/photoengine"
)

// runServe starts a site with the built-in preview templates. It is meant
// for inspecting a data directory without scaffolding a full project.
func runServe(args []string) error {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a config file (JSON with comments)")
	addr := flags.String("addr", "", "listen address (overrides config)")
	dataDir := flags.String("data-dir", "", "flat-file data directory (overrides config)")
	publicDir := flags.String("public-dir", "", "static web root (overrides config)")
	dev := flags.Bool("dev", true, "development mode, enables the admin surface")
	analyticsOn := flags.Bool("analytics", false, "enable the analytics beacon and dashboard API")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var cfg photoengine.SiteConfig
	if *configPath != "" {
		loaded, err := photoengine.LoadConfigFile(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *publicDir != "" {
		cfg.PublicDir = *publicDir
	}
	cfg.Development = *dev
	if *analyticsOn {
		cfg.AnalyticsEnabled = true
	}

	app := photoengine.New(cfg, previewViews())
	defer app.Close()
	return app.Start()
}
