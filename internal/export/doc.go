// Package export renders completed translations into downloadable documents:
// subtitle formats (SRT, WebVTT), plain text, a JSON document, and a dubbing
// script with per-segment synthesis instructions.
package export
