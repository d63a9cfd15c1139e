package middleware

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// BodyLimit returns middleware that caps the request body size. Dataset
// uploads are whole CSV files read into memory, so the cap is what keeps
// a stray multi-gigabyte upload from taking the process down.
//
// The limit is a human-readable string: "20M", "512K", "1G". A bare
// number is bytes. Exceeding the limit yields HTTP 413.
func BodyLimit(limit string) echo.MiddlewareFunc {
	maxBytes := parseLimit(limit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Body == nil || c.Request().Body == http.NoBody {
				return next(c)
			}

			// Content-Length allows early rejection; the limiting reader
			// still enforces the cap when the header is absent or lies.
			if c.Request().ContentLength > maxBytes {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
			}
			c.Request().Body = &limitedReadCloser{
				ReadCloser: c.Request().Body,
				remaining:  maxBytes,
			}
			return next(c)
		}
	}
}

// limitedReadCloser wraps an io.ReadCloser and fails once the read limit
// is exceeded.
type limitedReadCloser struct {
	io.ReadCloser
	remaining int64
	exceeded  bool
}

func (r *limitedReadCloser) Read(p []byte) (n int, err error) {
	if r.exceeded {
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}

	// Read at most remaining+1 bytes so overflow is detectable.
	toRead := int64(len(p))
	if toRead > r.remaining+1 {
		toRead = r.remaining + 1
	}

	n, err = r.ReadCloser.Read(p[:toRead])
	r.remaining -= int64(n)

	if r.remaining < 0 {
		r.exceeded = true
		return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return n, err
}

// parseLimit parses a size string ("20M", "512K", "1G") into bytes,
// defaulting to 1 MB when the string cannot be parsed.
func parseLimit(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 1 << 20
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "G") || strings.HasSuffix(s, "GB"):
		multiplier = 1 << 30
		s = strings.TrimRight(s, "GB")
	case strings.HasSuffix(s, "M") || strings.HasSuffix(s, "MB"):
		multiplier = 1 << 20
		s = strings.TrimRight(s, "MB")
	case strings.HasSuffix(s, "K") || strings.HasSuffix(s, "KB"):
		multiplier = 1 << 10
		s = strings.TrimRight(s, "KB")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 1 << 20
	}
	return n * multiplier
}
