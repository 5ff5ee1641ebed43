// Package preflight provides readiness checks for the directories, disk
// space, binaries, and provider endpoints the daemon depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and refuses to start processing when
//     a required check fails.
//   - The CLI "revoice status" command uses the individual check functions to
//     display service health.
package preflight
