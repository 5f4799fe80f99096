package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations can live in subpackages (e.g., postgres) inside this directory.

// ErrNotFound is returned by store lookups when no record matches.
// Implementations translate their backend's miss condition into this
// sentinel so callers never depend on driver errors.
var ErrNotFound = errors.New("record not found")
