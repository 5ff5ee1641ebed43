// Package providers holds the shared HTTP transport for the external speech
// providers: request encoding, authentication, bounded retries with
// exponential backoff, and tolerant JSON decoding of model output.
package providers
