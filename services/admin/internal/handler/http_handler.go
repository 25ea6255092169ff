package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mallkit/order-admin/common/errors"
	"github.com/mallkit/order-admin/services/admin/internal/presentation"
	"github.com/mallkit/order-admin/services/admin/internal/service"
)

// HTTPHandler 관리자 HTTP 핸들러
type HTTPHandler struct {
	shipmentService service.ShipmentService
	refundService   service.RefundService
	queryService    service.OrderQueryService
	logger          *zap.Logger
}

// NewHTTPHandler HTTP 핸들러 생성
func NewHTTPHandler(
	shipmentService service.ShipmentService,
	refundService service.RefundService,
	queryService service.OrderQueryService,
	logger *zap.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		shipmentService: shipmentService,
		refundService:   refundService,
		queryService:    queryService,
		logger:          logger,
	}
}

// ShipRequest 발송 요청
type ShipRequest struct {
	CarrierName string `json:"carrierName"`
	TrackingNo  string `json:"trackingNo"`
}

// DecideRefundRequest 환불 결정 요청
type DecideRefundRequest struct {
	Agree  bool   `json:"agree"`
	Reason string `json:"reason,omitempty"`
}

// ErrorResponse 에러 응답
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ListOrders 결제 완료 주문 목록 API (GET /admin/orders)
func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.queryService.ListPaid(r.Context(), limit, offset)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, presentation.ToOrderViews(orders))
}

// OrderRoutes 주문 단건 라우팅 (GET /admin/orders/{id}, POST .../ship, POST .../refund, POST .../received)
func (h *HTTPHandler) OrderRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/orders/")
	parts := strings.SplitN(rest, "/", 2)

	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid order ID", "")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.getOrder(w, r, orderID)
	case action == "ship" && r.Method == http.MethodPost:
		h.ship(w, r, orderID)
	case action == "refund" && r.Method == http.MethodPost:
		h.decideRefund(w, r, orderID)
	case action == "received" && r.Method == http.MethodPost:
		h.confirmReceived(w, r, orderID)
	default:
		h.respondError(w, http.StatusNotFound, "not found", "")
	}
}

func (h *HTTPHandler) getOrder(w http.ResponseWriter, r *http.Request, orderID int64) {
	order, err := h.queryService.Get(r.Context(), orderID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, presentation.ToOrderView(order))
}

func (h *HTTPHandler) ship(w http.ResponseWriter, r *http.Request, orderID int64) {
	var req ShipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	order, err := h.shipmentService.Ship(r.Context(), service.ShipOrderCommand{
		OrderID:     orderID,
		CarrierName: req.CarrierName,
		TrackingNo:  req.TrackingNo,
	})
	if err != nil {
		h.logger.Warn("ship request failed", zap.Int64("orderId", orderID), zap.Error(err))
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, presentation.ToOrderView(order))
}

func (h *HTTPHandler) decideRefund(w http.ResponseWriter, r *http.Request, orderID int64) {
	var req DecideRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	order, err := h.refundService.DecideRefund(r.Context(), service.DecideRefundCommand{
		OrderID: orderID,
		Agree:   req.Agree,
		Reason:  req.Reason,
	})
	if err != nil {
		h.logger.Warn("refund decision failed", zap.Int64("orderId", orderID), zap.Error(err))
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, presentation.ToOrderView(order))
}

func (h *HTTPHandler) confirmReceived(w http.ResponseWriter, r *http.Request, orderID int64) {
	order, err := h.shipmentService.ConfirmReceived(r.Context(), orderID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, presentation.ToOrderView(order))
}

// HealthCheck 헬스 체크 API
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// statusFromCode 에러 코드를 HTTP 상태 코드로 변환
func statusFromCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConcurrentModification:
		return http.StatusConflict
	case errors.ErrCodeRefundGatewayError:
		return http.StatusBadGateway
	case errors.ErrCodeNotPaid, errors.ErrCodeAlreadyShipped, errors.ErrCodeNotDelivered,
		errors.ErrCodeCrowdfundingNotSuccessful, errors.ErrCodeNoActiveRefundRequest:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPHandler) respondDomainError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	h.respondJSON(w, statusFromCode(code), ErrorResponse{
		Error: err.Error(),
		Code:  string(code),
	})
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, status int, message string, code string) {
	h.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
