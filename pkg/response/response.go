package response

import (
	"errors"
	"net/http"
	"time"

	"pgtx-coordinator/pkg/dberror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// BadRequest sends a 400 validation failure.
func BadRequest(c *gin.Context, message string) {
	send(c, http.StatusBadRequest, "VAL_001", message)
}

// Error sends an error response. Database errors are mapped by kind; anything
// else is a 500. The client only sees the code and a fixed message since the
// error text may carry interpolated SQL. The full error is attached to the
// gin context for the request logger.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code, message := classify(err)
	send(c, status, code, message)
}

func send(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		ErrorCode: code,
		Message:   message,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// classify returns the HTTP status, error code and client message for err.
func classify(err error) (int, string, string) {
	if errors.Is(err, dberror.ErrNoSuchTable) {
		return http.StatusNotFound, "NO_SUCH_TABLE", "table not found"
	}

	kind, ok := dberror.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "SYS_000", http.StatusText(http.StatusInternalServerError)
	}
	switch kind {
	case dberror.KindConstraint:
		return http.StatusConflict, "DB_CONSTRAINT", "constraint violation"
	case dberror.KindConnection:
		return http.StatusServiceUnavailable, "DB_CONNECTION", "database connection unavailable"
	case dberror.KindPoolExhausted:
		return http.StatusServiceUnavailable, "POOL_EXHAUSTED", "connection pool exhausted"
	case dberror.KindPoolClosed:
		return http.StatusServiceUnavailable, "POOL_CLOSED", "connection pool closed"
	default:
		return http.StatusInternalServerError, "DB_STATEMENT", "statement failed"
	}
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
