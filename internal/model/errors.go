// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, resource, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeDuplicateName      = "DUPLICATE_NAME"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeDepartmentNotFound = "DEPARTMENT_NOT_FOUND"
	ErrCodeCategoryNotFound   = "CATEGORY_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeAssetNotFound      = "ASSET_NOT_FOUND"
	ErrCodeResourceInUse      = "RESOURCE_IN_USE"
	ErrCodeSelfDelete         = "SELF_DELETE"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeWarrantyDownstream = "WARRANTY_DOWNSTREAM_ERROR"
)

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を実行する権限がありません。",
		Category: "auth",
		Action:   "管理者に権限の付与を依頼してください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力値が不正です: %s", field),
		Category: "validation",
		Action:   "必須項目を入力し、値の形式を確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディ解析エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewDuplicateNameError は名前の重複エラーを生成する。
func NewDuplicateNameError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateName,
		Message:  fmt.Sprintf("同じ名前が既に登録されています: %s", name),
		Category: "validation",
		Action:   "別の名前を指定してください。",
	}
}

// NewDuplicateEmailError はメールアドレスの重複エラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、既存アカウントでログインしてください。",
	}
}

// NewDepartmentNotFoundError は部署未検出エラーを生成する。
func NewDepartmentNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeDepartmentNotFound,
		Message:  fmt.Sprintf("指定された部署が見つかりません: %s", id),
		Category: "resource",
		Action:   "部署IDを確認してください。",
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("指定されたカテゴリが見つかりません: %s", id),
		Category: "resource",
		Action:   "カテゴリIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewAssetNotFoundError は資産未検出エラーを生成する。
func NewAssetNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeAssetNotFound,
		Message:  fmt.Sprintf("指定された資産が見つかりません: %s", id),
		Category: "resource",
		Action:   "資産IDを確認してください。",
	}
}

// NewResourceInUseError は参照が残っているため削除できないエラーを生成する。
// ストアのrestrict-on-delete制約の手前で、説明的なエラーとして返す。
func NewResourceInUseError(resource string, dependents string) *APIError {
	return &APIError{
		Code:     ErrCodeResourceInUse,
		Message:  fmt.Sprintf("%sは%sから参照されているため削除できません。", resource, dependents),
		Category: "resource",
		Action:   "参照している項目を先に削除または付け替えてください。",
	}
}

// NewSelfDeleteError は自分自身のアカウント削除を拒否するエラーを生成する。
func NewSelfDeleteError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfDelete,
		Message:  "自分自身のアカウントは削除できません。",
		Category: "validation",
		Action:   "別の管理者に削除を依頼してください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewWarrantyDownstreamError は外部保証サービスの呼び出し失敗エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewWarrantyDownstreamError() *APIError {
	return &APIError{
		Code:     ErrCodeWarrantyDownstream,
		Message:  "保証サービスとの通信に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
