// Package assets embeds the deck's fixed static images (spec.md §6
// "base64-embedded at pipeline init") as compile-time build assets rather
// than runtime-decoded base64, since none of these bytes vary per run.
package assets

import _ "embed"

//go:embed cover-bg.png
var CoverBackground []byte

//go:embed divider-bg.png
var DividerBackground []byte

//go:embed logo-dark.png
var LogoDark []byte

//go:embed logo-white.png
var LogoWhite []byte
