package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	customError "github.com/segyhp/lendtrack/pkg/errors"

	"go.uber.org/zap"
)

// Response is the envelope of every successful (and 503 health) answer
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorResponse carries the business code next to the user-facing message
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var now = time.Now

func write(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("encoding response", zap.Int("status", statusCode), zap.Error(err))
	}
}

// JSON wraps data in the envelope; success follows the status class
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	write(w, statusCode, Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: now(),
	})
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends message with an explicit status; err, when set, fills the error and code fields
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	body := ErrorResponse{
		Message:   message,
		Error:     message,
		Timestamp: now(),
	}
	if err != nil {
		body.Error = err.Error()
		body.Code = customError.Code(err)
	}
	write(w, statusCode, body)
}

// FromError sends err with the status and user message derived from its business code.
// Internal causes of 5xx errors are not echoed back to the client.
func FromError(w http.ResponseWriter, err error) {
	status := customError.HTTPStatus(err)
	message := customError.Message(err)

	body := ErrorResponse{
		Code:      customError.Code(err),
		Message:   message,
		Error:     message,
		Timestamp: now(),
	}
	if status < http.StatusInternalServerError {
		body.Error = err.Error()
	}
	write(w, status, body)
}

// File sends a binary attachment
func File(w http.ResponseWriter, contentType, filename string, data []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		zap.L().Error("writing file response", zap.String("filename", filename), zap.Error(err))
	}
}

func InternalServerError(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusInternalServerError, message, err)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message, customError.WrapUnauthorized(message))
}

// CORSMiddleware allows browser clients from any origin and answers preflight requests
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		// Lets the browser read the export filename
		h.Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
