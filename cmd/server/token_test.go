package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flightwatch-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func staticExchange(refreshToken string) codeExchanger {
	return func(context.Context, string) (*oauth2.Token, error) {
		return &oauth2.Token{RefreshToken: refreshToken}, nil
	}
}

func TestOAuthCallbackRepeatedRequestDoesNotBlock(t *testing.T) {
	t.Parallel()

	tokens := make(chan string, 1)
	handler := oauthCallback("state-1", staticExchange("refresh-1"), tokens, logger.NewNopLogger())

	for i := 0; i < 2; i++ {
		done := make(chan int)
		go func() {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/oauth2callback?state=state-1&code=abc", nil))
			done <- rr.Code
		}()

		select {
		case code := <-done:
			assert.Equal(t, http.StatusOK, code)
		case <-time.After(time.Second):
			t.Fatalf("callback %d blocked", i+1)
		}
	}

	require.Len(t, tokens, 1)
	assert.Equal(t, "refresh-1", <-tokens)
}

func TestOAuthCallbackRejects(t *testing.T) {
	t.Parallel()

	tokens := make(chan string, 1)
	failing := func(context.Context, string) (*oauth2.Token, error) {
		return nil, errors.New("invalid_grant")
	}

	rr := httptest.NewRecorder()
	oauthCallback("state-1", staticExchange("refresh-1"), tokens, logger.NewNopLogger()).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/oauth2callback?state=forged&code=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	oauthCallback("state-1", failing, tokens, logger.NewNopLogger()).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/oauth2callback?state=state-1&code=abc", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	assert.Empty(t, tokens)
}
