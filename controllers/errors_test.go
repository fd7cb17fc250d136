package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"neurovisa/services"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrEmailTaken, http.StatusBadRequest},
		{services.ErrWeakPassword, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrInactiveUser, http.StatusForbidden},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", services.ErrQuestionNotFound), http.StatusNotFound},
		{services.ErrSessionClosed, http.StatusConflict},
		{services.ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("mongo timeout"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
