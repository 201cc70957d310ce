// Package vista embeds the web front end's templates and static assets.
package vista

import "embed"

// In dev mode (IsDev=true) templates and assets are read from disk instead.

// StaticFS holds frontend/static (stylesheets, scripts).
//
//go:embed all:frontend/static
var StaticFS embed.FS

// TemplateFS holds frontend/templates.
//
//go:embed all:frontend/templates
var TemplateFS embed.FS
