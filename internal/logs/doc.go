// Package logs reads the daemon log file for the CLI. It supports tailing
// the last N lines and following the file for new output without holding it
// open, so log rotation does not break a running follow.
package logs
