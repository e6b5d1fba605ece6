package web

import "embed"

// Templates embeds the HTML templates rendered into PDF documents.
//
//go:embed templates/documents/*.html
var Templates embed.FS
