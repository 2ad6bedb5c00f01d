package domain

import "errors"

// ErrNotFound indicates the requested article does not exist.
var ErrNotFound = errors.New("article not found")

// ErrSlugConflict indicates a create collided with an existing slug.
var ErrSlugConflict = errors.New("article slug already exists")
