package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/scoutmatch/core"
)

// APIResponse 是统一的响应信封
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Error    *APIError `json:"error,omitempty"`
	Metadata Metadata  `json:"metadata"`
}

// APIError 是错误信息
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata 是响应元信息
type Metadata struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// 错误代码
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
	CodeBadRequest = "BAD_REQUEST"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func respondJSON(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	resp.Metadata.RequestID = requestID(r)
	resp.Metadata.Timestamp = time.Now().UTC()

	data, err := json.Marshal(resp)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	respondJSON(w, r, http.StatusOK, &APIResponse{Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("code", code).Int("status", status).Msg("api error")
	}
	respondJSON(w, r, status, &APIResponse{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
	})
}

// respondDomainError 将领域错误映射为 HTTP 状态码
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsInvalidInput(err):
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), err)
	case core.IsNotFound(err):
		respondError(w, r, http.StatusNotFound, CodeNotFound, err.Error(), err)
	case r.Context().Err() != nil:
		respondError(w, r, http.StatusServiceUnavailable, CodeInternal, "request cancelled", err)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "internal server error", err)
	}
}

// validateRequest 使用 validator 校验请求结构体，返回第一个字段错误的描述
func validateRequest(v any) *APIError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &APIError{Code: CodeValidation, Message: "invalid field " + fe.Field() + ": " + fe.Tag()}
	}
	return &APIError{Code: CodeValidation, Message: err.Error()}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
