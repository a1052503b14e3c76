package response

import (
	"math"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Data       any         `json:"data"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// ErrorBody carries a stable code, a readable message and optional details.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Detail  string            `json:"detail,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination fills TotalPages from the item count.
func NewPagination(page, perPage, total int) *Pagination {
	pages := 0
	if perPage > 0 {
		pages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	return &Pagination{Page: page, PerPage: perPage, TotalItems: total, TotalPages: pages}
}

// Metadata includes request tracing and timing.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ─── Success ───────────────────────────────────────────────────────

// Success sends data with the given status code.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Response{Data: data, Metadata: buildMetadata(c)})
}

// SuccessWithPagination sends a page of data.
func SuccessWithPagination(c *gin.Context, statusCode int, data any, pagination *Pagination) {
	c.JSON(statusCode, Response{
		Data:       data,
		Pagination: pagination,
		Metadata:   buildMetadata(c),
	})
}

// ─── Failure ───────────────────────────────────────────────────────

// Fail sends an error envelope for code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, failure(c, &ErrorBody{Code: code, Message: GetMessage(code)}))
}

// FailWithDetail adds a free-form detail, e.g. which column a sheet lacks.
func FailWithDetail(c *gin.Context, statusCode int, code ErrCode, detail string) {
	c.JSON(statusCode, failure(c, &ErrorBody{Code: code, Message: GetMessage(code), Detail: detail}))
}

// FailWithFields sends field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, failure(c, &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}))
}

// AbortFail aborts the middleware chain and sends an error envelope.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, failure(c, &ErrorBody{Code: code, Message: GetMessage(code)}))
}

func failure(c *gin.Context, body *ErrorBody) Response {
	return Response{Error: body, Metadata: buildMetadata(c)}
}

func buildMetadata(c *gin.Context) Metadata {
	return Metadata{
		RequestID: RequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
