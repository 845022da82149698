package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeExportPDF      = "export:pdf"
	TypeCleanupExports = "export:cleanup"
)

// ExportPDFPayload 描述一次异步 PDF 导出。
type ExportPDFPayload struct {
	UserID        uint   `json:"user_id"`
	ResumeID      uint   `json:"resume_id"`
	TemplateName  string `json:"template_name"`
	CorrelationID string `json:"correlation_id"`
}

// NewExportPDFTask 构造异步 PDF 导出任务。
func NewExportPDFTask(p ExportPDFPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeExportPDF, payload, asynq.MaxRetry(3)), nil
}

// ParseExportPDFPayload 解析任务负载。
func ParseExportPDFPayload(t *asynq.Task) (ExportPDFPayload, error) {
	var p ExportPDFPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal export payload: %w", err)
	}
	return p, nil
}

// NewCleanupExportsTask 构造过期导出文件清理任务。
func NewCleanupExportsTask() *asynq.Task {
	return asynq.NewTask(TypeCleanupExports, nil, asynq.MaxRetry(1))
}
