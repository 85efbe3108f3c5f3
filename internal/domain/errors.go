package domain

import "errors"

var (
	ErrMissingSourceURL  = errors.New("source URL is not configured (set CSV_URL)")
	ErrUnsupportedScheme = errors.New("unsupported source URL scheme")
	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrParse             = errors.New("no parser produced a usable table")
	ErrOutput            = errors.New("writing output failed")
)
