// Command revoice is the operator CLI for the transcription pipeline. It
// talks directly to the queue database and configuration, so most commands
// work whether or not the revoiced daemon is running.
package main
