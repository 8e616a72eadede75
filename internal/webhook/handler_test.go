package webhook

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockEventProcessor struct {
	mock.Mock
}

func (m *MockEventProcessor) Process(ctx context.Context, event ChargeEvent, raw []byte) (Outcome, error) {
	args := m.Called(ctx, event, raw)
	return args.Get(0).(Outcome), args.Error(1)
}

var testSecret = []byte("sk_test_secret")

const chargeSuccessBody = `{"event":"charge.success","data":{"reference":"ref-123","amount":250000,"currency":"NGN","status":"success","channel":"card","customer":{"email":"chidi@example.com"}}}`

func newRequest(method, body, signature string) *http.Request {
	req := httptest.NewRequest(method, "/webhook/paystack", bytes.NewBufferString(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	return req
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	processor := new(MockEventProcessor)
	handler := NewHandler(processor, testSecret, slog.Default())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(http.MethodGet, "", ""))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_MissingSignature(t *testing.T) {
	processor := new(MockEventProcessor)
	handler := NewHandler(processor, testSecret, slog.Default())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(http.MethodPost, chargeSuccessBody, ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_InvalidSignature(t *testing.T) {
	processor := new(MockEventProcessor)
	handler := NewHandler(processor, testSecret, slog.Default())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(http.MethodPost, chargeSuccessBody, "deadbeef"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_NonChargeEventIgnored(t *testing.T) {
	processor := new(MockEventProcessor)
	handler := NewHandler(processor, testSecret, slog.Default())

	body := `{"event":"charge.failed","data":{"reference":"ref-123"}}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(http.MethodPost, body, sign(testSecret, []byte(body))))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event Ignored", rec.Body.String())
	processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Funded(t *testing.T) {
	processor := new(MockEventProcessor)
	handler := NewHandler(processor, testSecret, slog.Default())

	processor.On("Process", mock.Anything, mock.AnythingOfType("webhook.ChargeEvent"), []byte(chargeSuccessBody)).
		Return(OutcomeFunded, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(http.MethodPost, chargeSuccessBody, sign(testSecret, []byte(chargeSuccessBody))))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Wallet Funded", rec.Body.String())

	event := processor.Calls[0].Arguments.Get(1).(ChargeEvent)
	assert.Equal(t, "ref-123", event.Data.Reference)
	assert.Equal(t, int64(250000), event.Data.Amount)
	assert.Equal(t, "chidi@example.com", event.Data.Customer.Email)
	processor.AssertExpectations(t)
}

func TestHandler_Duplicate(t *testing.T) {
	processor := new(MockEventProcessor)
	handler := NewHandler(processor, testSecret, slog.Default())

	processor.On("Process", mock.Anything, mock.Anything, mock.Anything).Return(OutcomeDuplicate, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(http.MethodPost, chargeSuccessBody, sign(testSecret, []byte(chargeSuccessBody))))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Already Processed", rec.Body.String())
}

func TestHandler_UnknownUser(t *testing.T) {
	processor := new(MockEventProcessor)
	handler := NewHandler(processor, testSecret, slog.Default())

	processor.On("Process", mock.Anything, mock.Anything, mock.Anything).Return(OutcomeUnknownUser, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(http.MethodPost, chargeSuccessBody, sign(testSecret, []byte(chargeSuccessBody))))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User not found", rec.Body.String())
}

func TestHandler_ProcessorError(t *testing.T) {
	processor := new(MockEventProcessor)
	handler := NewHandler(processor, testSecret, slog.Default())

	processor.On("Process", mock.Anything, mock.Anything, mock.Anything).
		Return(OutcomeFunded, errors.New("db down"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest(http.MethodPost, chargeSuccessBody, sign(testSecret, []byte(chargeSuccessBody))))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
