package fhir

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// FHIRContentType is the FHIR JSON content type with charset.
const FHIRContentType = "application/fhir+json; charset=utf-8"

// ContentNegotiationMiddleware serves the /fhir routes as application/fhir+json.
// The _format query parameter wins over the Accept header. XML is rejected with
// 406 Not Acceptable.
func ContentNegotiationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			format := c.QueryParam("_format")
			if format != "" {
				if isXMLFormat(format) {
					return c.JSON(http.StatusNotAcceptable, ErrorOutcome("XML format is not supported. Use application/fhir+json."))
				}
				if isJSONFormat(format) {
					c.Response().Header().Set(echo.HeaderContentType, FHIRContentType)
					return next(c)
				}
				return c.JSON(http.StatusNotAcceptable, ErrorOutcome("Unsupported _format value: "+format))
			}

			accept := c.Request().Header.Get("Accept")
			if accept != "" {
				if negotiateAccept(accept) {
					c.Response().Header().Set(echo.HeaderContentType, FHIRContentType)
					return next(c)
				}
				return c.JSON(http.StatusNotAcceptable, ErrorOutcome("Accept header does not include a supported FHIR content type. Use application/fhir+json."))
			}

			c.Response().Header().Set(echo.HeaderContentType, FHIRContentType)
			return next(c)
		}
	}
}

// normalizeFormat lowercases and restores the "+" that query decoding turns
// into a space ("application/fhir json").
func normalizeFormat(raw string) string {
	f := strings.TrimSpace(strings.ToLower(raw))
	f = strings.ReplaceAll(f, "fhir json", "fhir+json")
	f = strings.ReplaceAll(f, "fhir xml", "fhir+xml")
	return f
}

func isJSONFormat(format string) bool {
	switch normalizeFormat(format) {
	case "json", "application/json", "application/fhir+json":
		return true
	}
	return false
}

func isXMLFormat(format string) bool {
	switch normalizeFormat(format) {
	case "xml", "application/xml", "application/fhir+xml":
		return true
	}
	return false
}

// negotiateAccept reports whether any media type in the Accept header is JSON
// compatible.
func negotiateAccept(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		mediaType = strings.ToLower(mediaType)
		switch mediaType {
		case "application/fhir+json", "application/json", "json", "*/*":
			return true
		}
	}
	return false
}
