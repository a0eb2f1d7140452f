package helpers

import "context"

// CurrentInspector resolves a Telegram user ID to a domain entity via a
// service that implements GetInspectorByTelegramID. The generic type T allows
// callers to supply their own inspector model.
func CurrentInspector[T any](
	ctx context.Context,
	service interface {
		GetInspectorByTelegramID(context.Context, int64) (T, error)
	},
	tgID int64,
) (T, error) {
	var zero T
	if service == nil {
		return zero, nil
	}
	return service.GetInspectorByTelegramID(ctx, tgID)
}
