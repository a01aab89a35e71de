package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type dayScheduler interface {
	EnsureDay(ctx context.Context, userID string) error
}

// DailySchedule kicks off the per-user notification cycle — class reminders
// and the low-attendance check — on the first authenticated request of a
// day. The scheduler dedupes per user per date, so subsequent requests cost
// a map lookup. Failures are logged and never fail the request.
func DailySchedule(scheduler dayScheduler, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if claims, ok := CurrentUser(c); ok && claims.UserID != "" {
			if err := scheduler.EnsureDay(c.Request.Context(), claims.UserID); err != nil {
				logger.Warn("daily notification scheduling failed",
					zap.String("user_id", claims.UserID), zap.Error(err))
			}
		}
		c.Next()
	}
}
