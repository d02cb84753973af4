package handler

import (
	"net/http"

	"github.com/segyhp/lendtrack/internal/domain"
	"github.com/segyhp/lendtrack/pkg/response"
)

type MemberHandler struct {
	service CollectionService
}

func NewMemberHandler(service CollectionService) *MemberHandler {
	return &MemberHandler{
		service: service,
	}
}

// CreateMember handles POST /api/v1/members
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateMemberRequest
	if err := decodeJSON(w, r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	created, err := h.service.CreateMember(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, created)
}

// ListMembers handles GET /api/v1/members?status=
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, members)
}

// GetMember handles GET /api/v1/members/{memberId}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDFromPath(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	detail, err := h.service.GetMember(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, detail)
}

// DeleteMember handles DELETE /api/v1/members/{memberId}
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDFromPath(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := h.service.DeleteMember(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.MessageResponse{Message: "Member deleted"})
}

// RecordPayment handles POST /api/v1/members/{memberId}/payments
func (h *MemberHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDFromPath(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var request domain.RecordPaymentRequest
	if err := decodeJSON(w, r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	recorded, err := h.service.RecordPayment(r.Context(), id, &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, recorded)
}

// ListPayments handles GET /api/v1/members/{memberId}/payments
func (h *MemberHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDFromPath(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payments)
}
