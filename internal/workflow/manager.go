package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"revoice/internal/config"
	"revoice/internal/events"
	"revoice/internal/notifications"
	"revoice/internal/queue"
)

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	notifier     notifications.Service
	dispatcher   *events.Dispatcher

	heartbeat *HeartbeatMonitor

	lanes     map[laneKind]*laneState
	laneOrder []laneKind

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Transcription

	queueActive bool
	queueStart  time.Time
}

// NewManager constructs a workflow manager with the default notifier and a
// dispatcher wired with the workflow and notification handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	notifier := notifications.NewService(cfg)
	dispatcher := events.NewDispatcher(logger, cfg.Workflow.AsyncHandlerWorkers, cfg.Workflow.AsyncHandlerQueue)
	dispatcher.Register(events.NewWorkflowHandler(store, logger))
	dispatcher.Register(events.NewNotificationHandler(notifier, notifications.PreferencesFromConfig(cfg), logger))
	return NewManagerWithDeps(cfg, store, logger, notifier, dispatcher)
}

// Dispatcher exposes the event dispatcher so entry points outside the
// manager can emit lifecycle events for items they create.
func (m *Manager) Dispatcher() *events.Dispatcher { return m.dispatcher }

// NewManagerWithDeps constructs a workflow manager with explicit
// collaborators (used in tests).
func NewManagerWithDeps(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, dispatcher *events.Dispatcher) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		dispatcher:   dispatcher,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		lanes: make(map[laneKind]*laneState),
	}
}
