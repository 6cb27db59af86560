// Package handler adapts API Gateway proxy events to the chat use case.
package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"hotel-agent/internal/domain"
	"hotel-agent/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type UseCase interface {
	Send(ctx context.Context, in usecase.SendInput) (usecase.SendOutput, error)
	Receipt(ctx context.Context, conversationID, bookingID string) (string, error)
	Transcript(ctx context.Context, conversationID string) (string, error)
}

type Handler struct {
	uc     UseCase
	logger *slog.Logger
}

type chatRequest struct {
	ConversationID string                 `json:"conversationId"`
	Message        string                 `json:"message"`
	IsBookingForm  bool                   `json:"isBookingForm"`
	BookingDetails *domain.BookingDetails `json:"bookingDetails"`
}

type bookingResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type chatResponse struct {
	ConversationID         string                 `json:"conversationId"`
	Message                domain.Message         `json:"message"`
	UpdateBookingMessageID string                 `json:"updateBookingMessageId,omitempty"`
	NewBookingDetails      *domain.BookingDetails `json:"newBookingDetails,omitempty"`
	Booking                *bookingResponse       `json:"booking,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(uc UseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{uc: uc, logger: slog.Default().With("component", "handler")}, nil
}

// Handle serves POST /chat and the GET receipt and transcript documents.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := headerValue(req.Headers, correlationHeader)
	if corrID == "" {
		corrID = uuid.NewString()
	}
	logger := h.logger.With("correlation_id", corrID, "method", req.HTTPMethod, "path", req.Path)

	segments := strings.Split(strings.Trim(req.Path, "/"), "/")
	switch {
	case len(segments) == 1 && segments[0] == "chat":
		if req.HTTPMethod != http.MethodPost {
			return jsonResponse(http.StatusMethodNotAllowed, corrID, errorResponse{Error: "METHOD_NOT_ALLOWED"}), nil
		}
		return h.chat(ctx, logger, corrID, req), nil

	case len(segments) == 3 && segments[0] == "conversations" && segments[1] != "":
		if req.HTTPMethod != http.MethodGet {
			return jsonResponse(http.StatusMethodNotAllowed, corrID, errorResponse{Error: "METHOD_NOT_ALLOWED"}), nil
		}
		convID := segments[1]
		switch segments[2] {
		case "receipt":
			text, err := h.uc.Receipt(ctx, convID, req.QueryStringParameters["bookingId"])
			if err != nil {
				return errorFromUseCase(logger, corrID, err), nil
			}
			return textResponse(corrID, text), nil
		case "transcript":
			text, err := h.uc.Transcript(ctx, convID)
			if err != nil {
				return errorFromUseCase(logger, corrID, err), nil
			}
			return textResponse(corrID, text), nil
		}
	}
	return jsonResponse(http.StatusNotFound, corrID, errorResponse{Error: string(usecase.ErrorNotFound)}), nil
}

func (h *Handler) chat(ctx context.Context, logger *slog.Logger, corrID string, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		logger.WarnContext(ctx, "invalid request body", "err", err)
		return jsonResponse(http.StatusBadRequest, corrID, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}
	var in chatRequest
	if err := decodeStrict(body, &in); err != nil {
		logger.WarnContext(ctx, "invalid request body", "err", err)
		return jsonResponse(http.StatusBadRequest, corrID, errorResponse{Error: string(usecase.ErrorInvalidInput)})
	}

	out, err := h.uc.Send(ctx, usecase.SendInput{
		ConversationID: in.ConversationID,
		Message:        in.Message,
		IsBookingForm:  in.IsBookingForm,
		BookingDetails: in.BookingDetails,
	})
	if err != nil {
		return errorFromUseCase(logger, corrID, err)
	}

	resp := chatResponse{ConversationID: out.ConversationID, Message: out.Message}
	if out.Patch != nil {
		resp.UpdateBookingMessageID = out.Patch.TargetID
		details := out.Patch.BookingDetails
		resp.NewBookingDetails = &details
	}
	if out.Booking != nil {
		resp.Booking = &bookingResponse{Success: out.Booking.Success, Error: out.Booking.Error}
	}
	logger.InfoContext(ctx, "chat turn served", "conversation_id", out.ConversationID, "message_id", out.Message.ID)
	return jsonResponse(http.StatusOK, corrID, resp)
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	return base64.StdEncoding.DecodeString(req.Body)
}

func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected trailing data")
	}
	return nil
}

func errorFromUseCase(logger *slog.Logger, corrID string, err error) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		logger.Error("unexpected error", "err", err)
		return jsonResponse(http.StatusInternalServerError, corrID, errorResponse{Error: string(usecase.ErrorInternal)})
	}

	status := http.StatusInternalServerError
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		status = http.StatusBadRequest
	case usecase.ErrorNotFound:
		status = http.StatusNotFound
	case usecase.ErrorConflict:
		status = http.StatusConflict
	case usecase.ErrorRateLimited:
		status = http.StatusTooManyRequests
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", ucErr.Code, "reason", ucErr.Reason, "err", ucErr.Err)
	} else {
		logger.Warn("request rejected", "code", ucErr.Code, "reason", ucErr.Reason)
	}
	code := ucErr.Code
	if status == http.StatusInternalServerError {
		code = usecase.ErrorInternal
	}
	return jsonResponse(status, corrID, errorResponse{Error: string(code)})
}

func jsonResponse(status int, corrID string, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}

func textResponse(corrID, text string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":    "text/plain; charset=utf-8",
			correlationHeader: corrID,
		},
		Body: text,
	}
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
