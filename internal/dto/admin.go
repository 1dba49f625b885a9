package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/domain"
)

type CreateReportRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type ResolveReportRequest struct {
	Status      string  `json:"status" validate:"required,oneof=reviewed resolved"`
	AdminNotes  *string `json:"admin_notes,omitempty"`
	HideContent bool    `json:"hide_content"`
}

type HideContentRequest struct {
	Reason string `json:"reason,omitempty"`
}

type SetUserActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type ReportResponse struct {
	ID         uuid.UUID     `json:"id"`
	TargetType string        `json:"target_type"`
	TargetID   uuid.UUID     `json:"target_id"`
	Reason     string        `json:"reason"`
	Status     string        `json:"status"`
	AdminNotes *string       `json:"admin_notes,omitempty"`
	ResolvedBy *uuid.UUID    `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
	Reporter   *UserBriefDTO `json:"reporter,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

func MapReport(r *domain.Report) ReportResponse {
	return ReportResponse{
		ID:         r.ID,
		TargetType: string(r.TargetType),
		TargetID:   r.TargetID,
		Reason:     r.Reason,
		Status:     string(r.Status),
		AdminNotes: r.AdminNotes,
		ResolvedBy: r.ResolvedBy,
		ResolvedAt: r.ResolvedAt,
		Reporter:   MapUserBrief(r.Reporter),
		CreatedAt:  r.CreatedAt,
	}
}
