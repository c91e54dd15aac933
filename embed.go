package pulseboard

import "embed"

// EmbeddedAssets contains the static assets served under /public/:
// dashboard.css and live.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
