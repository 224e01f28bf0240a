package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/logger"
	"evfleet-ops-backend/internal/messaging"
	"evfleet-ops-backend/internal/repository"
	"evfleet-ops-backend/internal/storage"
	"evfleet-ops-backend/internal/utils"
)

type handoverService struct {
	orderRepo  repository.OrderRepository
	evidence   storage.EvidenceStorage
	inspectCfg utils.InspectionConfig
	publisher  messaging.EventPublisher
	validate   *validator.Validate
	now        func() time.Time
}

func NewHandoverService(
	orderRepo repository.OrderRepository,
	evidence storage.EvidenceStorage,
	inspectCfg utils.InspectionConfig,
	publisher messaging.EventPublisher,
	validate *validator.Validate,
) HandoverService {
	return &handoverService{
		orderRepo:  orderRepo,
		evidence:   evidence,
		inspectCfg: inspectCfg,
		publisher:  publisher,
		validate:   validate,
		now:        time.Now,
	}
}

// storedAsset tracks an uploaded evidence asset so a partially failed
// batch can be cleaned up before anything touches the order.
type storedAsset struct {
	key string
	url string
}

func (s *handoverService) DeliverVehicle(ctx context.Context, actor domain.Actor, req DeliverVehicleRequest) (*domain.RentalOrder, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid deliver request: %w", err)
	}

	order, version, err := s.orderRepo.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	// Fail on state before spending time on uploads.
	if !domain.CanTransition(order.Status, domain.EventDeliver) {
		return nil, &domain.UnsupportedTransitionError{Status: order.Status, Event: domain.EventDeliver}
	}

	files := append([]EvidenceFile(nil), req.Photos...)
	if req.ContractBefore != nil {
		files = append(files, *req.ContractBefore)
	}
	if req.ContractAfter != nil {
		files = append(files, *req.ContractAfter)
	}
	assets, err := s.uploadAll(ctx, req.OrderID, "delivery", files)
	if err != nil {
		return nil, err
	}

	payload := domain.DeliveryPayload{
		PhotoURLs:         urlsOf(assets[:len(req.Photos)]),
		OdometerOutKm:     req.OdometerOutKm,
		BatteryOutPercent: req.BatteryOutPercent,
		Note:              req.Note,
	}
	rest := assets[len(req.Photos):]
	if req.ContractBefore != nil {
		payload.ContractBeforeURL = rest[0].url
		rest = rest[1:]
	}
	if req.ContractAfter != nil {
		payload.ContractAfterURL = rest[0].url
	}

	updated, err := s.commit(ctx, order, version, domain.EventDeliver, payload, actor)
	if err != nil {
		s.cleanup(ctx, assets)
		return nil, err
	}
	return updated, nil
}

func (s *handoverService) ReturnVehicle(ctx context.Context, actor domain.Actor, req ReturnVehicleRequest) (*domain.RentalOrder, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid return request: %w", err)
	}

	order, version, err := s.orderRepo.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, domain.EventReturn) {
		return nil, &domain.UnsupportedTransitionError{Status: order.Status, Event: domain.EventReturn}
	}

	assets, err := s.uploadAll(ctx, req.OrderID, "return", req.Photos)
	if err != nil {
		return nil, err
	}

	// Penalty is computed only now, at inspection time, from the actual
	// return moment and the staff-entered damage assessment.
	inspection := utils.ComputePenalty(s.inspectCfg, utils.InspectionInput{
		PlannedEndDate:    order.PlannedEndDate,
		ActualReturnAt:    s.now(),
		OdometerOutKm:     order.OdometerOutKm,
		OdometerInKm:      req.OdometerInKm,
		BatteryOutPercent: order.BatteryOutPercent,
		BatteryInPercent:  req.BatteryInPercent,
		DamageFeeCents:    req.DamageFeeCents,
	})
	penalty := inspection.TotalCents

	payload := domain.ReturnPayload{
		PhotoURLs:        urlsOf(assets),
		PenaltyCents:     &penalty,
		PenaltyNote:      req.PenaltyNote,
		OdometerInKm:     req.OdometerInKm,
		BatteryInPercent: req.BatteryInPercent,
	}

	updated, err := s.commit(ctx, order, version, domain.EventReturn, payload, actor)
	if err != nil {
		s.cleanup(ctx, assets)
		return nil, err
	}
	logger.Info("Return inspection settled",
		"order_id", updated.ID, "late_days", inspection.LateDays,
		"penalty_cents", penalty, "total_cents", updated.TotalCostCents)
	return updated, nil
}

// commit runs the pure transition and persists it with the optimistic
// version check. After the CompareAndSwap succeeds the operation is
// committed and is never rolled back; a later cancellation signal must be
// compensated with a follow-up transition where one is legal.
func (s *handoverService) commit(ctx context.Context, order *domain.RentalOrder, version int64, event domain.Event, payload any, actor domain.Actor) (*domain.RentalOrder, error) {
	updated, err := domain.Transition(order, event, payload, actor, s.now())
	if err != nil {
		return nil, err
	}

	// Last cancellation point before the write commits.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	newVersion, err := s.orderRepo.CompareAndSwap(ctx, order.ID, version, updated)
	if err != nil {
		return nil, err
	}
	updated.Version = newVersion

	s.publish(messaging.OrderStatusEvent{
		OrderID:    updated.ID,
		FromStatus: order.Status,
		ToStatus:   updated.Status,
		Event:      event,
		Actor:      actor,
		OccurredAt: s.now(),
	})
	logger.Info("Order transition committed",
		"order_id", updated.ID, "event", event,
		"from", order.Status, "to", updated.Status,
		"staff_id", actor.StaffID, "version", newVersion)
	return updated, nil
}

// uploadAll stores every asset or none: the first failure deletes the
// assets stored so far and surfaces EvidenceUploadError, leaving the order
// untouched.
func (s *handoverService) uploadAll(ctx context.Context, orderID int64, stage string, files []EvidenceFile) ([]storedAsset, error) {
	assets := make([]storedAsset, 0, len(files))
	for _, f := range files {
		key := fmt.Sprintf("orders/%d/%s/%s_%s", orderID, stage, uuid.NewString(), f.FileName)
		url, err := s.evidence.Upload(ctx, key, f.ContentType, bytes.NewReader(f.Data))
		if err != nil {
			s.cleanup(ctx, assets)
			return nil, &domain.EvidenceUploadError{FileName: f.FileName, Err: err}
		}
		assets = append(assets, storedAsset{key: key, url: url})
	}
	return assets, nil
}

// cleanup removes orphaned evidence after a failed operation. Best effort:
// stored assets are write-once and harmless if a delete is missed.
func (s *handoverService) cleanup(ctx context.Context, assets []storedAsset) {
	for _, a := range assets {
		if err := s.evidence.Delete(ctx, a.key); err != nil {
			logger.Warn("Failed to delete orphaned evidence", "key", a.key, "error", err)
		}
	}
}

func (s *handoverService) publish(ev messaging.OrderStatusEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStatusChange(ev); err != nil {
		logger.Warn("Failed to publish order status event", "order_id", ev.OrderID, "error", err)
	}
}

func urlsOf(assets []storedAsset) []string {
	urls := make([]string, len(assets))
	for i, a := range assets {
		urls[i] = a.url
	}
	return urls
}
