package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tapevm/pkg/domain"
)

// LogHooks writes one record per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(level slog.Level) func(context.Context, *domain.Event) {
		return func(ctx context.Context, e *domain.Event) {
			attrs := []any{
				"program_length", e.ProgramLength,
				"ip", e.InstructionPointer,
				"steps", e.Steps,
				"duration", e.Duration,
			}
			if e.Cached {
				attrs = append(attrs, "cached", true)
			}
			if e.Err != nil {
				attrs = append(attrs, "kind", domain.Kind(e.Err), "error", e.Err)
			}
			logger.Log(ctx, level, string(e.Type), attrs...)
		}
	}

	return domain.LifecycleHooks{
		OnStart:   log(slog.LevelDebug),
		OnResume:  log(slog.LevelDebug),
		OnSuspend: log(slog.LevelInfo),
		OnFinish:  log(slog.LevelInfo),
		OnReject:  log(slog.LevelInfo),
		OnFault:   log(slog.LevelWarn),
	}
}
