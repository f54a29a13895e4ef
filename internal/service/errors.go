package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oohgrid/reservation-service/internal/availability"
)

var (
	ErrInvalidWindow         = errors.New("start_date must not be after end_date")
	ErrPlanNotFound          = errors.New("plan not found")
	ErrAssetNotFound         = errors.New("asset not found")
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrCampaignAssetNotFound = errors.New("campaign asset not found")
	ErrPlanEmpty             = errors.New("plan has no line items")
	ErrPlanRejected          = errors.New("rejected plan cannot be converted")
	ErrPlanImmutable         = errors.New("converted plan is immutable")
	ErrInvalidStatus         = errors.New("unknown status value")
	ErrInvalidTransition     = errors.New("status transition not allowed")
	ErrForbidden             = errors.New("role is not allowed to perform this action")
)

// ResourceConflict names one asset that failed the availability re-check.
type ResourceConflict struct {
	AssetID   uint
	AssetCode string
	// Reason is "booked", "conflict", "blocked" or "maintenance".
	Reason  string
	HeldBy  []uint // campaign ids holding the overlapping windows
	Windows []availability.Window
}

// ConflictError aborts a conversion before any write: every offending asset
// is enumerated so the caller can re-plan in one pass.
type ConflictError struct {
	Resources []ResourceConflict
}

func (e *ConflictError) Error() string {
	codes := make([]string, len(e.Resources))
	for i, r := range e.Resources {
		codes[i] = fmt.Sprintf("%s (%s)", r.AssetCode, r.Reason)
	}
	return "assets not available: " + strings.Join(codes, ", ")
}

// PartialFailureError reports a conversion that died after the campaign came
// into existence. CompletedStep is the last step that fully succeeded and
// PendingAssetIDs the reservation writes still outstanding; re-running the
// convert call resumes exactly there.
type PartialFailureError struct {
	PlanID          uint
	CampaignID      uint
	CompletedStep   Step
	PendingAssetIDs []uint
	Err             error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("conversion of plan %d incomplete after step %q (campaign %d, %d assets pending): %v",
		e.PlanID, e.CompletedStep, e.CampaignID, len(e.PendingAssetIDs), e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
