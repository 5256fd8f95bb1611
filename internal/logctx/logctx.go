// Package logctx enriches slog records with hook-dispatch context so every
// log line emitted while a lifecycle handler runs carries the dispatch ID,
// hook kind, and scope without threading them through call signatures.
package logctx

import (
	"context"
	"log/slog"
)

type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if hd, ok := ctx.Value(hookDataKey{}).(*HookData); ok {
		r.AddAttrs(slog.Group("hook",
			slog.String("id", hd.DispatchID),
			slog.String("kind", hd.Kind),
			slog.String("scope", hd.Scope),
		))
	}

	if rd, ok := ctx.Value(relationDataKey{}).(*RelationData); ok {
		r.AddAttrs(slog.Group("relation",
			slog.String("side", rd.Side),
		))
	}

	return h.Handler.Handle(ctx, r)
}

type hookDataKey struct{}

type HookData struct {
	DispatchID string
	Kind       string
	Scope      string
}

func WithHookData(ctx context.Context, data *HookData) context.Context {
	return context.WithValue(ctx, hookDataKey{}, data)
}

type relationDataKey struct{}

type RelationData struct {
	Side string
}

func WithRelationData(ctx context.Context, data *RelationData) context.Context {
	return context.WithValue(ctx, relationDataKey{}, data)
}
