// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/scholaris/admin-gateway/internal/audit"
	"github.com/scholaris/admin-gateway/internal/platform/respond"
	"github.com/scholaris/admin-gateway/internal/rbac"
)

// # Gateway Audit Trail

// AuditReader lists recorded gateway decisions. Implemented by the audit
// package's PostgreSQL store.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// auditEventPayload is the wire form of one audit event.
type auditEventPayload struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	TenantID  string    `json:"tenant_id,omitempty"`
	Role      rbac.Role `json:"role,omitempty"`
	IP        string    `json:"ip"`
	Path      string    `json:"path"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditHandler serves the super-admin view of the gateway audit trail.
type AuditHandler struct {
	reader AuditReader
}

// NewAuditHandler constructs a new [AuditHandler].
func NewAuditHandler(reader AuditReader) *AuditHandler {
	return &AuditHandler{reader: reader}
}

/*
List returns the newest gateway audit events.

GET /super-admin/gateway-audit?limit=N

Description: Mounted inside the super-admin route group; tier-2 enforcement
has already verified the role. Covers only decisions the GATEWAY made (logins,
redirects, denials); the platform's business audit log lives on the remote API.

Response:
  - 200: []auditEventPayload, newest first
  - 500: INTERNAL_ERROR: Database failure
*/
func (handler *AuditHandler) List(writer http.ResponseWriter, request *http.Request) {
	limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

	events, err := handler.reader.ListRecent(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := make([]auditEventPayload, 0, len(events))
	for _, event := range events {
		payload = append(payload, auditEventPayload{
			ID:        event.ID,
			Type:      string(event.Type),
			UserID:    event.UserID,
			TenantID:  event.TenantID,
			Role:      event.Role,
			IP:        event.IP,
			Path:      event.Path,
			Detail:    event.Detail,
			CreatedAt: event.CreatedAt,
		})
	}

	respond.OK(writer, payload)
}
