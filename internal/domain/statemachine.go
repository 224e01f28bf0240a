package domain

import (
	"strings"
	"time"
)

type Event string

const (
	EventApprovePayment Event = "approve-payment"
	EventCancel         Event = "cancel"
	EventDeliver        Event = "deliver"
	EventReturn         Event = "return"
)

// transitions is the single source of truth for legal status flow. Any
// status transition, whatever surface requests it, must pass through
// Transition; nothing else writes Status.
var transitions = map[OrderStatus]map[Event]OrderStatus{
	OrderStatusPending: {
		EventApprovePayment: OrderStatusConfirmed,
		EventCancel:         OrderStatusCancelled,
	},
	OrderStatusConfirmed: {
		EventDeliver: OrderStatusRenting,
		EventCancel:  OrderStatusCancelled,
	},
	OrderStatusRenting: {
		EventReturn: OrderStatusCompleted,
	},
	// terminal
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// PaymentApproval is the fact supplied by the payment collaborator.
type PaymentApproval struct {
	ApprovedAt time.Time
	Reference  string
}

// CancelRequest carries an optional staff reason.
type CancelRequest struct {
	Reason string
}

// DeliveryPayload holds evidence references and readings for the
// CONFIRMED -> RENTING handover. URLs must already be stored; the state
// machine performs no I/O.
type DeliveryPayload struct {
	PhotoURLs         []string
	ContractBeforeURL string
	ContractAfterURL  string
	OdometerOutKm     *int32
	BatteryOutPercent *int32
	Note              string
}

// ReturnPayload holds evidence references, readings and the penalty
// computed by the inspection engine for RENTING -> COMPLETED.
type ReturnPayload struct {
	PhotoURLs        []string
	PenaltyCents     *int64
	PenaltyNote      string
	OdometerInKm     *int32
	BatteryInPercent *int32
}

// CanTransition reports whether event is defined from status.
func CanTransition(status OrderStatus, event Event) bool {
	_, ok := transitions[status][event]
	return ok
}

// Transition validates the requested event against the current order and
// returns the updated order. It is a pure function: the input order is
// never mutated, and no I/O happens here. Persistence and evidence upload
// are the caller's responsibility.
//
// Guard failures return *InvalidTransitionError; events not defined from
// the current status return *UnsupportedTransitionError. It never silently
// no-ops: retrying a handover on an already-RENTING order fails.
func Transition(o *RentalOrder, event Event, payload any, actor Actor, now time.Time) (*RentalOrder, error) {
	next, ok := transitions[o.Status][event]
	if !ok {
		return nil, &UnsupportedTransitionError{Status: o.Status, Event: event}
	}
	if actor.StaffID == 0 {
		return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "missing actor identity"}
	}

	out := o.Clone()

	switch event {
	case EventApprovePayment:
		p, ok := payload.(PaymentApproval)
		if !ok || p.ApprovedAt.IsZero() {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "no payment approval recorded"}
		}
		out.PaymentApprovedAt = &p.ApprovedAt
		out.PaymentReference = p.Reference

	case EventCancel:
		if o.ActualPickupAt != nil {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "vehicle already handed over"}
		}
		if p, ok := payload.(CancelRequest); ok && p.Reason != "" {
			out.Note = appendNote(out.Note, p.Reason)
		}

	case EventDeliver:
		p, ok := payload.(DeliveryPayload)
		if !ok {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "missing delivery payload"}
		}
		if len(p.PhotoURLs) == 0 {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "at least one delivery photo is required"}
		}
		if o.ActualPickupAt != nil {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "vehicle already handed over"}
		}
		out.DeliveryPhotoURLs = append([]string(nil), p.PhotoURLs...)
		out.ContractBeforeURL = p.ContractBeforeURL
		out.ContractAfterURL = p.ContractAfterURL
		out.OdometerOutKm = p.OdometerOutKm
		out.BatteryOutPercent = p.BatteryOutPercent
		if p.Note != "" {
			out.Note = appendNote(out.Note, p.Note)
		}
		t := now
		out.ActualPickupAt = &t

	case EventReturn:
		p, ok := payload.(ReturnPayload)
		if !ok {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "missing return payload"}
		}
		if len(p.PhotoURLs) == 0 {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "at least one return photo is required"}
		}
		if p.PenaltyCents == nil || *p.PenaltyCents < 0 {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "penalty has not been computed"}
		}
		if o.ActualReturnAt != nil {
			return nil, &InvalidTransitionError{Status: o.Status, Event: event, Reason: "vehicle already returned"}
		}
		out.ReturnPhotoURLs = append([]string(nil), p.PhotoURLs...)
		out.OdometerInKm = p.OdometerInKm
		out.BatteryInPercent = p.BatteryInPercent
		penalty := *p.PenaltyCents
		out.PenaltyCostCents = &penalty
		out.TotalCostCents = out.BaseCostCents() + penalty
		if p.PenaltyNote != "" {
			out.Note = appendNote(out.Note, p.PenaltyNote)
		}
		t := now
		out.ActualReturnAt = &t
	}

	out.Status = next
	out.UpdatedAt = now
	return out, nil
}

func appendNote(existing, added string) string {
	added = strings.TrimSpace(added)
	if added == "" {
		return existing
	}
	if existing == "" {
		return added
	}
	return existing + "\n" + added
}
