package domain

import "errors"

// ErrEmptyUserID is returned when a run is requested without a user.
var ErrEmptyUserID = errors.New("user id is required")

// ErrUnknownNode is returned when the engine is asked to execute a node the graph does not define.
var ErrUnknownNode = errors.New("unknown node")

// ErrInvalidRoute is returned when a router picks a target that is not one of the node's transitions.
var ErrInvalidRoute = errors.New("router selected an undeclared transition")

// ErrStepLimit is returned when a run exceeds the engine's step ceiling.
var ErrStepLimit = errors.New("step limit exceeded")

// ErrInvalidGraph is returned by the builder when the graph is not well formed.
var ErrInvalidGraph = errors.New("invalid graph")
