package service

import (
	"context"

	"kodbank/internal/logger"
)

// OTPSender delivers registration codes to the user.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogOTPSender writes codes to the application log. It stands in for an
// email gateway in development and demo deployments.
type LogOTPSender struct{}

func (LogOTPSender) SendOTP(ctx context.Context, email, code string) error {
	logger.WithContext(ctx).Info("otp issued", "email", email, "code", code)
	return nil
}
