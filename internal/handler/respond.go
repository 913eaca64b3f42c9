// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/assetman/internal/middleware"
	"github.com/hitoshi/assetman/internal/model"
)

// dateLayout は購入日などの日付フィールドのJSON表現。
const dateLayout = "2006-01-02"

// writeJSON は成功レスポンスをJSONで書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidRequest,
		model.ErrCodeResourceInUse, model.ErrCodeSelfDelete:
		return http.StatusBadRequest
	case model.ErrCodeDuplicateName, model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	case model.ErrCodeDepartmentNotFound, model.ErrCodeCategoryNotFound,
		model.ErrCodeUserNotFound, model.ErrCodeAssetNotFound:
		return http.StatusNotFound
	case model.ErrCodeWarrantyDownstream:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeInvalidRequest はリクエストボディ解析エラーを書き込む。
func writeInvalidRequest(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
}

// writeUnauthorized は認証エラーを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}
