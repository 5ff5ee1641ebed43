// Package daemon ties the queue store, workflow manager, and notifier into a
// single lifecycle with flock-based locking to prevent multiple instances
// from processing the same queue database.
package daemon
