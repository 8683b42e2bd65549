// Package processor turns raw chain events into persisted, broadcast
// notifications.
package processor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"notifyScope/internal/chain"
	"notifyScope/internal/model"
	"notifyScope/internal/storage"
)

// ExtraFetcher resolves a template's extra field address to on-chain state.
type ExtraFetcher interface {
	FetchExtra(ctx context.Context, kind model.LookupKind, address string) (chain.ExtraInfo, error)
}

// Publisher delivers processed output to connected clients.
type Publisher interface {
	PublishNotification(dapp model.Dapp, n model.Notification)
	PublishEvent(program string, ev model.RawEvent)
}

// Processor renders and persists one notification per raw event. Every
// failure is terminal for that event only; nothing propagates to the caller.
type Processor struct {
	dapps         storage.DappDirectory
	templates     storage.TemplateStore
	notifications storage.NotificationStore
	extra         ExtraFetcher
	publisher     Publisher
	logger        *zap.Logger
	now           func() time.Time
}

func New(
	dapps storage.DappDirectory,
	templates storage.TemplateStore,
	notifications storage.NotificationStore,
	extra ExtraFetcher,
	publisher Publisher,
	logger *zap.Logger,
) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		dapps:         dapps,
		templates:     templates,
		notifications: notifications,
		extra:         extra,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

// Handle runs the notification pipeline for one raw event: resolve the dapp
// and template, optionally fetch the extra account, render, persist, and
// broadcast.
func (p *Processor) Handle(ctx context.Context, source model.ProgramEndpoint, ev model.RawEvent) {
	// raw echo on the program's own channel, independent of templates
	p.publisher.PublishEvent(source.Name, ev)

	dapp, err := p.dapps.FindDapp(ctx, source.Address)
	if errors.Is(err, storage.ErrNotFound) {
		p.logger.Warn("dapp not registered, dropping event",
			zap.String("program", source.Name),
			zap.String("event", ev.Name),
		)
		return
	}
	if err != nil {
		p.logger.Warn("dapp lookup failed, dropping event",
			zap.String("program", source.Name),
			zap.String("event", ev.Name),
			zap.Error(err),
		)
		return
	}

	tpl, err := p.templates.FindTemplate(ctx, dapp.ID, ev.Name)
	if errors.Is(err, storage.ErrNotFound) {
		p.logger.Warn("no content template, dropping event",
			zap.String("dapp", dapp.ID),
			zap.String("event", ev.Name),
		)
		return
	}
	if err != nil {
		p.logger.Warn("template lookup failed, dropping event",
			zap.String("dapp", dapp.ID),
			zap.String("event", ev.Name),
			zap.Error(err),
		)
		return
	}

	p.fetchExtraInfo(ctx, tpl, ev)

	notification := model.Notification{
		DappID:   dapp.ID,
		Name:     dapp.Name,
		Content:  tpl.RenderContent(),
		Seen:     false,
		Time:     p.now(),
		EventKey: ev.EventKey(),
	}

	persisted, inserted, err := p.notifications.InsertNotification(ctx, notification)
	if err != nil {
		p.logger.Error("persist notification failed",
			zap.String("dapp", dapp.ID),
			zap.String("event", ev.Name),
			zap.Error(err),
		)
		return
	}
	if !inserted {
		p.logger.Debug("duplicate event delivery ignored",
			zap.String("dapp", dapp.ID),
			zap.String("event_key", notification.EventKey),
		)
		return
	}

	p.publisher.PublishNotification(dapp, persisted)
}

// fetchExtraInfo performs the template-declared secondary lookup. The result
// is logged for operators and discarded; failures never stop the pipeline.
func (p *Processor) fetchExtraInfo(ctx context.Context, tpl model.ContentTemplate, ev model.RawEvent) {
	if tpl.ExtraField == "" {
		return
	}
	kind := tpl.ExtraKind()
	if kind == model.LookupNone {
		return
	}
	address, ok := ev.Fields[tpl.ExtraField].(string)
	if !ok || address == "" {
		return
	}

	info, err := p.extra.FetchExtra(ctx, kind, address)
	if err != nil {
		p.logger.Warn("extra info lookup failed",
			zap.String("event", ev.Name),
			zap.String("kind", kind.String()),
			zap.String("address", address),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("extra info resolved",
		zap.String("event", ev.Name),
		zap.String("kind", kind.String()),
		zap.Any("info", info),
	)
}
