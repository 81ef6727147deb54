package service

import "errors"

var (
	ErrForbidden = errors.New("access denied")

	ErrOfferNotFound    = errors.New("offer not found")
	ErrOfferRFQMismatch = errors.New("offer does not belong to the given rfq")
	ErrRFQNotOpen       = errors.New("rfq is no longer open for offers")
	ErrOfferNotPending  = errors.New("offer is not pending")

	ErrShipmentNotFound       = errors.New("shipment not found")
	ErrInvalidTrackingNumber  = errors.New("invalid tracking number")
	ErrInvalidStatus          = errors.New("invalid shipment status")
	ErrInvalidTransition      = errors.New("shipment status transition not allowed")
	ErrShipmentStatusConflict = errors.New("shipment status changed concurrently")

	ErrPODNotFound          = errors.New("proof of delivery not found")
	ErrPODNotAllowed        = errors.New("proof of delivery can only be submitted for shipments in transit, in customs or delivered")
	ErrPODNoDocuments       = errors.New("at least one document is required")
	ErrReviewNotesRequired  = errors.New("review notes are required")
	ErrInvalidReviewOutcome = errors.New("review outcome must be verified or rejected")
	ErrPODAlreadyReviewed   = errors.New("proof of delivery has already been reviewed")

	ErrSessionNotFound    = errors.New("pos session not found")
	ErrSessionAlreadyOpen = errors.New("operator already has an open pos session")
	ErrSessionClosed      = errors.New("pos session is closed")
	ErrNoOpenSession      = errors.New("operator has no open pos session")
	ErrInvalidAmount      = errors.New("invalid amount")

	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponCodeTaken = errors.New("coupon code already exists")
	ErrCouponInactive  = errors.New("coupon is inactive")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	ErrCouponMinAmount = errors.New("amount is below the coupon minimum")
	ErrInvalidCoupon   = errors.New("invalid coupon definition")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrShipmentAlreadyPaid = errors.New("shipment is already paid")
	ErrCheckoutFailed      = errors.New("payment provider checkout failed")

	ErrNotificationNotFound = errors.New("notification not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
)
