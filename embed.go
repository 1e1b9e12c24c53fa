package toolkit

import "embed"

// EmbeddedAssets contains the stylesheet and script served under /public/:
// catalog.css and catalog.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
