// Package templates embeds the rendering templates for production output.
package templates

import "embed"

//go:embed page.html.tmpl
var FS embed.FS
