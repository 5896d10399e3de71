package usecase

import (
	"context"
	"strings"
	"time"

	"camerastore/internal/domain/model"
	repo "camerastore/internal/repository"
)

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

// クエリ文字列のまま受け取る
type ListAuditLogsInput struct {
	Action       string
	ResourceType string
	ResourceID   int64
	From         string
	To           string
	Limit        int
}

type AuditLogOutput struct {
	ID           int64                   `json:"id"`
	ActorUserID  int64                   `json:"actorUserId"`
	Action       model.AuditAction       `json:"action"`
	ResourceType model.AuditResourceType `json:"resourceType"`
	ResourceID   int64                   `json:"resourceId"`
	BeforeJSON   string                  `json:"before"`
	AfterJSON    string                  `json:"after"`
	CreatedAt    time.Time               `json:"createdAt"`
}

func (u *AuditLogUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]AuditLogOutput, error) {
	f := repo.AuditLogFilter{Limit: in.Limit}

	if a := strings.TrimSpace(in.Action); a != "" {
		action := model.AuditAction(strings.ToUpper(a))
		f.Action = &action
	}
	if rt := strings.TrimSpace(in.ResourceType); rt != "" {
		t := model.AuditResourceType(strings.ToLower(rt))
		f.ResourceType = &t
	}
	if in.ResourceID > 0 {
		id := in.ResourceID
		f.ResourceID = &id
	}

	//期間はRFC3339
	if in.From != "" {
		t, ok := parseDateTimeRFC3339(in.From)
		if !ok {
			return []AuditLogOutput{}, newError(ErrValidation, "from must be RFC3339")
		}
		f.CreatedFrom = t
	}
	if in.To != "" {
		t, ok := parseDateTimeRFC3339(in.To)
		if !ok {
			return []AuditLogOutput{}, newError(ErrValidation, "to must be RFC3339")
		}
		f.CreatedTo = t
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []AuditLogOutput{}, internalError(err)
	}

	out := make([]AuditLogOutput, 0, len(logs))
	for _, l := range logs {
		out = append(out, AuditLogOutput{
			ID:           l.ID,
			ActorUserID:  l.ActorUserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			BeforeJSON:   l.BeforeJSON,
			AfterJSON:    l.AfterJSON,
			CreatedAt:    l.CreatedAt,
		})
	}
	return out, nil
}

func parseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
