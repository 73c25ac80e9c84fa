package photoengine

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// dashboard.js, the admin client.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
