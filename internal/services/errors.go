package services

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden indicates the caller is not allowed to act on the record.
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrNotApproved indicates a payment was attempted against an
	// application that is not in the approved state.
	ErrNotApproved = errors.New("application is not approved for payment")

	// ErrInvalidTransition indicates the requested status change is not
	// allowed from the application's current state.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrRemarksRequired indicates a rejection was submitted without remarks.
	ErrRemarksRequired = errors.New("remarks are required when rejecting an application")

	// ErrNegativeFee indicates an approval carried a negative fee amount.
	ErrNegativeFee = errors.New("fee must not be negative")
)
