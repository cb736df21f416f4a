package api

import (
	"github.com/starford/raido/internal/joblog"
	"github.com/starford/raido/internal/stylegraph"
)

// StyleInfo is a single catalog entry (aliased from the domain layer).
type StyleInfo = stylegraph.StyleInfo

// StyleListResponse wraps a style catalog listing.
type StyleListResponse struct {
	Styles []StyleInfo `json:"styles" validate:"required"`
	Total  int         `json:"total" example:"12" validate:"required"`
}

// Job is one recorded operation (aliased from the domain layer).
type Job = joblog.Job

// JobListResponse wraps the operation history.
type JobListResponse struct {
	Jobs  []Job `json:"jobs" validate:"required"`
	Total int   `json:"total" example:"3" validate:"required"`
}
