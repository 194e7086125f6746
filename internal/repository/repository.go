package repository

import "errors"

// Package repository defines data access for every entity using SQL queries only.
// No business logic here; implementations live in subpackages (e.g. postgres).
// Lookups of missing rows return sql.ErrNoRows so callers can map it.

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")
