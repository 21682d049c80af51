package infrastructure

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// NotificationService sends desktop notifications about batch progress
type NotificationService struct {
	enabled bool
	method  string
	logger  *zap.Logger
}

// NewNotificationService creates a notification service. method is
// "osascript" on macOS or "notify-send" on Linux.
func NewNotificationService(enabled bool, method string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		enabled: enabled,
		method:  method,
		logger:  logger,
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	switch n.method {
	case "osascript":
		return n.sendOSAScript(title, message)
	case "notify-send":
		return n.sendNotifySend(title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.method))
		return nil
	}
}

func (n *NotificationService) sendOSAScript(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	cmd := exec.Command("osascript", "-e", script)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "osascript"),
			zap.Error(err))
		return err
	}
	return nil
}

func (n *NotificationService) sendNotifySend(title, message string) error {
	cmd := exec.Command("notify-send", title, message)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "notify-send"),
			zap.Error(err))
		return err
	}
	return nil
}

// NotifyBatchCompleted reports the finished batch
func (n *NotificationService) NotifyBatchCompleted(summary *domain.BatchSummary) {
	title := "Downloads Complete"
	message := fmt.Sprintf("%d item(s) downloaded", summary.SuccessfulItems)
	if summary.FailedItems > 0 {
		title = "Downloads Finished With Errors"
		message = fmt.Sprintf("%d item(s) downloaded, %d failed",
			summary.SuccessfulItems, summary.FailedItems)
	}
	n.Send(title, message)
}

// NotifyBatchSkipped reports a batch where every URL was a duplicate
func (n *NotificationService) NotifyBatchSkipped(count int) {
	n.Send("Nothing To Download", fmt.Sprintf("%d duplicate URL(s) skipped", count))
}
