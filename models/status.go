package models

import "errors"

// OrderStatus is the closed set of order lifecycle states
type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusOrdered         OrderStatus = "ordered"
	StatusProcessed       OrderStatus = "processed"
	StatusShipped         OrderStatus = "shipped"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusRefundOnProcess OrderStatus = "refund on process"
	StatusRefunded        OrderStatus = "refunded"
	StatusPaymentFailed   OrderStatus = "payment failed"
)

// StatusAction is an administrative action against an order
type StatusAction string

const (
	ActionFulfill        StatusAction = "fulfill"
	ActionCancel         StatusAction = "cancel"
	ActionShipped        StatusAction = "shipped"
	ActionDelivered      StatusAction = "delivered"
	ActionRefund         StatusAction = "refund"
	ActionRefunded       StatusAction = "refunded"
	ActionUpdateTracking StatusAction = "updateTracking"
)

var (
	ErrUnknownAction    = errors.New("unknown order action")
	ErrNotCancellable   = errors.New("shipped or delivered orders cannot be cancelled")
	ErrTrackingRequired = errors.New("tracking number and link are required")
	ErrNotRefundable    = errors.New("order is not in refund process")
)

// ApplyAction is the only code path allowed to change an order's status.
// Tracking fields, when both supplied, are persisted regardless of which
// action is taken. The returned changed flag lets callers skip no-op saves.
func ApplyAction(o *Order, action StatusAction, trackingNo, trackingLink string) (changed bool, message string, err error) {
	if trackingNo != "" && trackingLink != "" {
		if o.TrackingNo != trackingNo || o.TrackingLink != trackingLink {
			o.TrackingNo = trackingNo
			o.TrackingLink = trackingLink
			changed = true
		}
	}

	setStatus := func(s OrderStatus) {
		if o.Status != s {
			o.Status = s
			changed = true
		}
	}

	switch action {
	case ActionFulfill:
		if !o.Fulfilled {
			o.Fulfilled = true
			changed = true
		}
		setStatus(StatusProcessed)
		message = "Order fulfilled and marked as processed"
	case ActionCancel:
		if o.Status == StatusShipped || o.Status == StatusDelivered {
			return false, "", ErrNotCancellable
		}
		setStatus(StatusCancelled)
		message = "Order cancelled"
	case ActionShipped:
		if o.TrackingNo == "" || o.TrackingLink == "" {
			return false, "", ErrTrackingRequired
		}
		setStatus(StatusShipped)
		message = "Order marked as shipped"
	case ActionDelivered:
		setStatus(StatusDelivered)
		message = "Order marked as delivered"
	case ActionRefund:
		setStatus(StatusRefundOnProcess)
		message = "Refund in process"
	case ActionRefunded:
		if o.Status != StatusRefundOnProcess {
			return false, "", ErrNotRefundable
		}
		setStatus(StatusRefunded)
		message = "Order refunded"
	case ActionUpdateTracking:
		message = "Tracking details updated"
	default:
		return false, "", ErrUnknownAction
	}

	return changed, message, nil
}
