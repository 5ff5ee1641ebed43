// Package workflow advances transcription jobs through the configured
// processing stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// jobs into registered stage handlers while capturing progress and failure
// metadata. Lifecycle milestones are published as domain events so downstream
// handlers (review flagging, notifications) stay decoupled from stage
// execution.
//
// The workflow supports independent lanes, each polling for jobs matching its
// statuses. The default configuration runs the transcriber in a single
// foreground lane; add new lifecycle stages by extending StageSet and
// registering them in ConfigureStages.
package workflow
