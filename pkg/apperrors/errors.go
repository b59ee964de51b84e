package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidReportType = errors.New("invalid report type")
	ErrInvalidGraphType  = errors.New("invalid graph type")
	ErrFileNotFound      = errors.New("file not found")
	ErrNoData            = errors.New("no data to plot")
	ErrMissingColumns    = errors.New("missing required columns")
	ErrNotConfigured     = errors.New("service not configured")
)
