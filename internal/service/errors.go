package service

import (
	"context"
	"errors"

	"kodbank/internal/repository"
)

// Kind groups failures for the HTTP layer.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindBusinessRule   Kind = "business_rule"
	KindInfrastructure Kind = "infrastructure"
)

// AppError is a classified failure with a stable machine code and a message
// that is safe to show to the user.
type AppError struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *AppError) Error() string { return e.Msg }

func newErr(kind Kind, code, msg string) *AppError {
	return &AppError{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrAuthRequired       = newErr(KindAuthentication, "AUTH_REQUIRED", "authentication required")
	ErrInvalidSession     = newErr(KindAuthentication, "INVALID_SESSION", "session is invalid or expired")
	ErrInvalidCredentials = newErr(KindAuthentication, "INVALID_CREDENTIALS", "incorrect identifier or password")
	ErrIncorrectMPIN      = newErr(KindAuthentication, "INCORRECT_MPIN", "incorrect mPIN")

	ErrMalformedBody  = newErr(KindValidation, "MALFORMED_BODY", "request body is not valid JSON for this endpoint")
	ErrMissingFields  = newErr(KindValidation, "MISSING_FIELDS", "required fields are missing")
	ErrInvalidAmount  = newErr(KindValidation, "INVALID_AMOUNT", "amount must be a positive number")
	ErrInvalidShares  = newErr(KindValidation, "INVALID_SHARES", "shares must be a positive whole number")
	ErrUnknownSymbol  = newErr(KindValidation, "UNKNOWN_SYMBOL", "symbol is not traded")
	ErrUnknownLoan    = newErr(KindValidation, "UNKNOWN_LOAN", "loan product does not exist")
	ErrInvalidMPIN    = newErr(KindValidation, "INVALID_MPIN", "mPIN must be 4 to 6 digits")
	ErrInvalidOTP     = newErr(KindValidation, "INVALID_OTP", "verification code is invalid")
	ErrShortUsername  = newErr(KindValidation, "USERNAME_TOO_SHORT", "username must be at least 5 characters")
	ErrUsernameTaken  = newErr(KindValidation, "USERNAME_TAKEN", "username already in use")
	ErrEmailTaken     = newErr(KindValidation, "EMAIL_TAKEN", "email already in use")
	ErrUserNotFound   = newErr(KindValidation, "USER_NOT_FOUND", "account not found")
	ErrRewardNotFound = newErr(KindValidation, "REWARD_NOT_FOUND", "reward is no longer available")

	ErrAccountInactive           = newErr(KindBusinessRule, "ACCOUNT_INACTIVE", "account not activated, verify your email first")
	ErrMPINAlreadySet            = newErr(KindBusinessRule, "MPIN_ALREADY_SET", "mPIN is already set")
	ErrSpinLimitExceeded         = newErr(KindBusinessRule, "SPIN_LIMIT_EXCEEDED", "spin limit reached (5 per day), try tomorrow")
	ErrInsufficientCoins         = newErr(KindBusinessRule, "INSUFFICIENT_COINS", "insufficient coins, a spin costs 3000")
	ErrInsufficientRewardBalance = newErr(KindBusinessRule, "INSUFFICIENT_REWARD_BALANCE", "insufficient reward balance")
	ErrRecipientNotFound         = newErr(KindBusinessRule, "RECIPIENT_NOT_FOUND", "recipient not found")
	ErrSelfTransfer              = newErr(KindBusinessRule, "SELF_TRANSFER", "cannot transfer to yourself")
	ErrInsufficientFunds         = newErr(KindBusinessRule, "INSUFFICIENT_FUNDS", "insufficient funds")
	ErrPositionNotFound          = newErr(KindBusinessRule, "POSITION_NOT_FOUND", "no position in this symbol")
	ErrInsufficientShares        = newErr(KindBusinessRule, "INSUFFICIENT_SHARES", "insufficient shares")
	ErrLoanDeclined              = newErr(KindBusinessRule, "LOAN_DECLINED", "loan application declined")

	ErrStorageUnavailable = newErr(KindInfrastructure, "STORAGE_UNAVAILABLE", "storage is unavailable, try again later")
	ErrInternal           = newErr(KindInfrastructure, "INTERNAL", "internal error")
)

// Classify maps any error returned by this package to an AppError.
func Classify(err error) *AppError {
	var app *AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &app):
		return app
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return ErrStorageUnavailable
	default:
		return ErrInternal
	}
}

// storeErr translates repository outcomes that callers did not handle.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}
