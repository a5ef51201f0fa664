package folio

import "embed"

// EmbeddedAssets contains the static assets shipped with the engine:
// site.js (navigation, lightbox and cover crossfade) and site.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
