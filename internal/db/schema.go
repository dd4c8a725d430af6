package db

import _ "embed"

// Schema is made of idempotent statements, it can be applied on every start.
//
//go:embed schema.sql
var Schema string
