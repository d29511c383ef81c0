package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error bodies are a flat {"message": ...}; validation failures carry an
// extra "details" list so clients can highlight fields.
func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	if details == nil {
		ctx.JSON(status, gin.H{"message": message})
		return
	}

	ctx.JSON(status, gin.H{
		"message": message,
		"details": details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, message, nil)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}
