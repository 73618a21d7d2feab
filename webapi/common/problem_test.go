package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/payoutrouter/pkg/cache"
	"github.com/amirasaad/payoutrouter/pkg/iso20022"
	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{iso20022.ErrInvalidSignature, fiber.StatusUnauthorized},
		{fmt.Errorf("parse: %w", iso20022.ErrMalformedMessage), fiber.StatusBadRequest},
		{fmt.Errorf("transfer 0: %w", payout.ErrInvalidInput), fiber.StatusUnprocessableEntity},
		{money.ErrInvalidCurrency, fiber.StatusUnprocessableEntity},
		{cache.ErrDeliveryInFlight, fiber.StatusConflict},
		{fiber.ErrRequestEntityTooLarge, fiber.StatusRequestEntityTooLarge},
		{&payout.PartialExecutionError{Err: context.Canceled}, fiber.StatusInternalServerError},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorToStatusCode(tt.err))
		})
	}
}
