package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/service"
)

const maxUploadBytes = 32 << 20 // 32 MB per request

// OrderHandler exposes the staff-facing order operations over REST.
type OrderHandler struct {
	orders   service.OrderService
	handover service.HandoverService
	lookup   service.LookupService
}

func NewOrderHandler(orders service.OrderService, handover service.HandoverService, lookup service.LookupService) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		handover: handover,
		lookup:   lookup,
	}
}

// RegisterRoutes attaches all order routes to the (already authenticated)
// router.
func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/orders", h.HandleCreateOrder).Methods("POST")
	router.HandleFunc("/api/v1/orders", h.HandleSearchOrders).Methods("GET")
	router.HandleFunc("/api/v1/orders/{id:[0-9]+}", h.HandleGetOrder).Methods("GET")
	router.HandleFunc("/api/v1/orders/{id:[0-9]+}/approve-payment", h.HandleApprovePayment).Methods("POST")
	router.HandleFunc("/api/v1/orders/{id:[0-9]+}/cancel", h.HandleCancel).Methods("POST")
	router.HandleFunc("/api/v1/orders/{id:[0-9]+}/deliver", h.HandleDeliverVehicle).Methods("POST")
	router.HandleFunc("/api/v1/orders/{id:[0-9]+}/return", h.HandleReturnVehicle).Methods("POST")
	router.HandleFunc("/api/v1/stations/{id:[0-9]+}/orders", h.HandleStationOrders).Methods("GET")
}

func (h *OrderHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", false)
		return
	}
	order, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) HandleSearchOrders(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		writeError(w, http.StatusBadRequest, "phone query parameter is required", false)
		return
	}
	orders, err := h.lookup.OrdersByPhone(r.Context(), phone)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) HandleStationOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	orders, err := h.lookup.OrdersByStation(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) HandleApprovePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var body struct {
		PaymentReference string `json:"payment_reference"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body) // reference is optional
	}
	order, err := h.orders.ApprovePayment(r.Context(), actor, id, body.PaymentReference)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	order, err := h.orders.Cancel(r.Context(), actor, id, body.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) HandleDeliverVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request", false)
		return
	}

	req := service.DeliverVehicleRequest{
		OrderID: id,
		Note:    r.FormValue("note"),
	}
	var err error
	if req.Photos, err = formFiles(r, "photos"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	if req.ContractBefore, err = formFile(r, "contract_before"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	if req.ContractAfter, err = formFile(r, "contract_after"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	if req.OdometerOutKm, err = formInt32(r, "odometer_out_km"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	if req.BatteryOutPercent, err = formInt32(r, "battery_out_percent"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}

	order, err := h.handover.DeliverVehicle(r.Context(), actor, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) HandleReturnVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request", false)
		return
	}

	req := service.ReturnVehicleRequest{
		OrderID:     id,
		PenaltyNote: r.FormValue("penalty_note"),
	}
	var err error
	if req.Photos, err = formFiles(r, "photos"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	if v := r.FormValue("damage_fee_cents"); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil || fee < 0 {
			writeError(w, http.StatusBadRequest, "damage_fee_cents must be a non-negative integer", false)
			return
		}
		req.DamageFeeCents = fee
	}
	if req.OdometerInKm, err = formInt32(r, "odometer_in_km"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}
	if req.BatteryInPercent, err = formInt32(r, "battery_in_percent"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}

	order, err := h.handover.ReturnVehicle(r.Context(), actor, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id", false)
		return 0, false
	}
	return id, true
}

func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := ActorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing actor identity", false)
		return domain.Actor{}, false
	}
	return actor, true
}

func formFiles(r *http.Request, field string) ([]service.EvidenceFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	files := make([]service.EvidenceFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readEvidenceFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, nil
}

func formFile(r *http.Request, field string) (*service.EvidenceFile, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	return readEvidenceFile(r.MultipartForm.File[field][0])
}

func readEvidenceFile(fh *multipart.FileHeader) (*service.EvidenceFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("failed to read uploaded file " + fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("failed to read uploaded file " + fh.Filename)
	}
	return &service.EvidenceFile{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func formInt32(r *http.Request, field string) (*int32, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return nil, errors.New(field + " must be an integer")
	}
	n32 := int32(n)
	return &n32, nil
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: msg, Retryable: retryable})
}

// writeDomainError maps the typed error taxonomy onto HTTP statuses.
// ConcurrentModification is flagged retryable: the operator should refetch
// and reapply. All other failures are terminal for that attempt.
func writeDomainError(w http.ResponseWriter, err error) {
	var invalid *domain.InvalidTransitionError
	var unsupported *domain.UnsupportedTransitionError
	var upload *domain.EvidenceUploadError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), false)
	case errors.Is(err, domain.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error(), true)
	case errors.As(err, &invalid):
		writeError(w, http.StatusConflict, err.Error(), false)
	case errors.As(err, &unsupported):
		writeError(w, http.StatusConflict, err.Error(), false)
	case errors.As(err, &upload):
		writeError(w, http.StatusBadGateway, err.Error(), false)
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), false)
	}
}
