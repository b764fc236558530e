// Package schemas embeds the SQL migrations for the review scheduler tables.
package schemas

import "embed"

// Migrations holds the ordered DDL for items, progress, sessions, and
// review events. Applied by the migrate command in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
