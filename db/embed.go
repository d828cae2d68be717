// Package db provides the embedded tenant schema.
package db

import _ "embed"

// Schema contains the DDL statements for one tenant's tables. It is applied
// inside the tenant's schema and is safe to run repeatedly.
//
//go:embed migrations/001_schema.sql
var Schema string
