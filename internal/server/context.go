package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/contactkeeper/internal/auth"
	"github.com/teemow/contactkeeper/internal/people"
	"github.com/teemow/contactkeeper/internal/toolstore"
	"github.com/teemow/contactkeeper/internal/transfer"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	store   *toolstore.Client
	auth    *auth.Manager
	metrics *Metrics
	logger  *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context from host configuration.
// No contacts client is created here: clients are built per call so
// they always see the freshest credentials.
func NewServerContext(ctx context.Context, cfg toolstore.Config, logger *slog.Logger) (*ServerContext, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := toolstore.NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	// The host's token endpoint may be absent; the manager then reports
	// every expired credential as needing reactivation.
	var endpoint auth.TokenEndpoint
	if store.HasTokenEndpoint() {
		endpoint = store
	}
	manager := auth.NewManager(store, endpoint, auth.WithLogger(logger))

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		store:   store,
		auth:    manager,
		metrics: NewMetrics(),
		logger:  logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the host storage client.
func (sc *ServerContext) Store() *toolstore.Client {
	return sc.store
}

// Auth returns the credential manager.
func (sc *ServerContext) Auth() *auth.Manager {
	return sc.auth
}

// Metrics returns the server's metrics set.
func (sc *ServerContext) Metrics() *Metrics {
	return sc.metrics
}

// Logger returns the server's logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// UserID returns the single user this server instance is bound to.
func (sc *ServerContext) UserID() string {
	return sc.store.Config().UserID
}

// ContactsClient builds a contacts client for the bound user. The
// client's token source goes through the credential manager and its
// refresh hook drives the one retry-after-401 cycle.
func (sc *ServerContext) ContactsClient(ctx context.Context) (*people.Client, error) {
	userID := sc.UserID()
	return people.NewClient(ctx, people.Options{
		TokenSource: sc.auth.TokenSource(ctx, userID),
		Refresh: func(ctx context.Context) error {
			_, err := sc.auth.ForceRefresh(ctx, userID)
			if err != nil {
				sc.metrics.ObserveRefresh("error")
				return err
			}
			sc.metrics.ObserveRefresh("success")
			return nil
		},
		Logger: sc.logger,
	})
}

// TransferPipeline builds an import/export pipeline for the bound user.
func (sc *ServerContext) TransferPipeline(ctx context.Context) (*transfer.Pipeline, error) {
	client, err := sc.ContactsClient(ctx)
	if err != nil {
		return nil, err
	}
	return transfer.NewPipeline(client, sc.store, sc.logger), nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
