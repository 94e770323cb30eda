// internal/server/response.go
//
// 本檔負責統一錯誤回應格式與請求驗證：
//   - 領域錯誤由 writeErr 對應到 HTTP 狀態碼
//   - 請求內容以 validator 檢查，失敗時回傳欄位明細
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"acctregistry/internal/bank"
	"acctregistry/internal/logging"
)

var validate = validator.New()

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type badRequestErrorResponse struct {
	Message string            `json:"message"`
	Details []validationError `json:"details"`
}

func validateRequest(obj any) []validationError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []validationError{{Message: err.Error(), Type: "invalid"}}
	}
	out := make([]validationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, validationError{
			Field:   fe.Field(),
			Message: errorMsg(fe),
			Type:    fe.Tag(),
		})
	}
	return out
}

func errorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + fe.Param()
	default:
		return "Invalid value"
	}
}

func respondWithValidationError(c *gin.Context, verrs []validationError) {
	c.JSON(http.StatusBadRequest, badRequestErrorResponse{
		Message: "Invalid request data",
		Details: verrs,
	})
}

func respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

// statusFor 將領域錯誤對應到 HTTP 狀態碼。
func statusFor(err error) int {
	switch {
	case errors.Is(err, bank.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrInsufficient), errors.Is(err, bank.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, bank.ErrNotDuplicate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bank.ErrBadAmount), errors.Is(err, bank.ErrSameAccount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(c *gin.Context, err error) {
	respondWithError(c, statusFor(err), err.Error())
}

// requestLogger 記錄每個請求的方法、路徑、狀態碼與耗時。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
