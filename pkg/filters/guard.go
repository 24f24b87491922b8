package filters

import (
	"context"
	"fmt"

	"github.com/sipeed/tgfilters/pkg/logger"
)

// Handler processes an update that passed its filter.
type Handler func(ctx context.Context, u *Update) error

// Check wraps h so it only runs for updates that pass f. Rejected updates
// return nil without calling h; a filter error is returned and h is skipped.
func Check(f Filter, h Handler) Handler {
	return func(ctx context.Context, u *Update) error {
		ok, err := f.Check(ctx, u)
		if err != nil {
			return fmt.Errorf("filter %s: %w", Name(f), err)
		}
		if !ok {
			logger.DebugCF("filters", "Update rejected by filter", map[string]any{
				"filter": Name(f),
			})
			return nil
		}
		return h(ctx, u)
	}
}
