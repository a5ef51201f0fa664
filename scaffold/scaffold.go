// Package scaffold holds the starter files written by "folio new".
package scaffold

import "embed"

// Templates contains the site skeleton. Files ending in .tmpl are executed
// with text/template; "dotenv" is written as .env.example.
//
//go:embed all:templates
var Templates embed.FS
