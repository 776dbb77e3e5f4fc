package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/database/minio"
)

// RunReportArchiver writes each automation pass's summary to object storage
// so operators can audit past ticks. A nil client disables archiving.
type RunReportArchiver struct {
	client *minio.MinioClient
}

func NewRunReportArchiver(client *minio.MinioClient) *RunReportArchiver {
	return &RunReportArchiver{client: client}
}

// ArchiveTaskTick stores the result of one scheduling pass.
func (a *RunReportArchiver) ArchiveTaskTick(ctx context.Context, result *TaskTickResult) {
	a.archive(ctx, "task-ticks", result.StartedAt, result)
}

// ArchiveAlertSweep stores the result of one analyzer sweep.
func (a *RunReportArchiver) ArchiveAlertSweep(ctx context.Context, kind string, result *AlertTickResult) {
	a.archive(ctx, kind, result.StartedAt, result)
}

func (a *RunReportArchiver) archive(ctx context.Context, kind string, startedAt time.Time, report any) {
	if a == nil || a.client == nil {
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		slog.Warn("Failed to encode run report", "kind", kind, "error", err)
		return
	}

	objectName := fmt.Sprintf("%s/%s.json", kind, startedAt.UTC().Format("2006-01-02T15-04-05"))
	if err := a.client.UploadBytes(ctx, minio.Storage.RunReports, objectName, body, "application/json"); err != nil {
		// Archiving is best-effort; the tick result already made it to logs.
		slog.Warn("Failed to archive run report", "kind", kind, "error", err)
		return
	}

	slog.Debug("Archived run report", "object", objectName)
}
