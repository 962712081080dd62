// Package appfs exposes the repository's embedded static files:
// database migrations and email templates.
package appfs

import "embed"

// The base layouts are named explicitly: embed skips _-prefixed files
// when matching directories.
//
//go:embed migrations assets assets/templates/email/_base.txt assets/templates/email/_base.gohtml
var FS embed.FS
