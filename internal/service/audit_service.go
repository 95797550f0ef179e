package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/worksphere/admin-auth/internal/events"
	"github.com/worksphere/admin-auth/internal/repository"
)

// AuditService records authentication events in the log and, when configured, in Postgres.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	store      repository.AuditRepository
}

// NewAuditService creates the service. store may be nil.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, store repository.AuditRepository) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		store:      store,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAdminLoginSucceeded, a.handle)
	a.dispatcher.Subscribe(events.EventAdminLoginRejected, a.handle)
	a.dispatcher.Subscribe(events.EventAdminLoginFailed, a.handle)
	a.dispatcher.Subscribe(events.EventAdminTokenRejected, a.handle)
}

// Recent returns the latest persisted events, newest first.
func (a *AuditService) Recent(ctx context.Context, limit int) ([]repository.AuditEntry, error) {
	if a.store == nil {
		return []repository.AuditEntry{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return a.store.ListRecent(ctx, limit)
}

// Persistent reports whether events are stored beyond the log.
func (a *AuditService) Persistent() bool {
	return a.store != nil
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("email", event.Identity),
		zap.String("token_id", event.TokenID),
		zap.String("reason", string(event.Reason)),
		zap.String("ip", event.RemoteIP),
		zap.Time("at", event.Timestamp))

	if a.store == nil {
		return nil
	}
	return a.store.Create(ctx, &repository.AuditEntry{
		ID:         event.ID,
		EventType:  string(event.Type),
		Identity:   event.Identity,
		TokenID:    event.TokenID,
		Reason:     string(event.Reason),
		RemoteIP:   event.RemoteIP,
		OccurredAt: event.Timestamp,
	})
}
