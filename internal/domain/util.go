package domain

import (
	"context"

	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

// storageError logs the cause and hides it behind a retryable error.
func storageError(ctx context.Context, format string, a ...any) error {
	xcontext.Logger(ctx).Errorf(format, a...)
	return errorx.New(errorx.Unavailable, "Reward storage is temporarily unavailable")
}
