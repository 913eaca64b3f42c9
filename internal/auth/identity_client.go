// Package auth は外部IDプロバイダーへの認証委譲とトークン検証を提供する。
// パスワードハッシュやトークン発行の暗号処理はすべてIDプロバイダー側が行う。
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// プロバイダー呼び出しの結果を表すセンチネルエラー。
var (
	// ErrEmailExists は同一メールアドレスのアカウントが既に存在することを表す。
	ErrEmailExists = errors.New("email already registered at identity provider")
	// ErrInvalidCredentials はメールアドレスまたはパスワードの不一致を表す。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken はトークンが無効または失効していることを表す。
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ProviderUser はIDプロバイダーが保持するアカウント情報を表す。
type ProviderUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenResponse はパスワードグラントのレスポンスを表す。
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// IdentityClientConfig はIDプロバイダークライアントの設定。
type IdentityClientConfig struct {
	// BaseURL はIDプロバイダーのベースURL。
	BaseURL string
	// ServiceKey は管理API（アカウント作成・削除）用のサービスキー。
	ServiceKey string
	// Timeout はHTTPクライアントのタイムアウト。ゼロ値の場合は10秒。
	Timeout time.Duration
}

// IdentityClient はIDプロバイダーのHTTPクライアント。
// サインアップ、パスワードグラント、トークン解決、アカウント削除を提供する。
type IdentityClient struct {
	config     IdentityClientConfig
	httpClient *http.Client
}

// NewIdentityClient はIdentityClientを生成する。
func NewIdentityClient(config IdentityClientConfig) *IdentityClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &IdentityClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// signUpRequest はアカウント作成リクエストのボディ。
type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// passwordGrantRequest はパスワードグラントリクエストのボディ。
type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp はIDプロバイダーにアカウントを作成する。
// 同一メールアドレスのアカウントが既に存在する場合はErrEmailExistsを返す。
func (c *IdentityClient) SignUp(ctx context.Context, email, password, name string) (*ProviderUser, error) {
	return c.createAccount(ctx, c.config.BaseURL+"/signup", signUpRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}, false)
}

// AdminCreateUser はサービスキーを使用して管理APIでアカウントを作成する。
// 同一メールアドレスのアカウントが既に存在する場合はErrEmailExistsを返す。
func (c *IdentityClient) AdminCreateUser(ctx context.Context, email, password, name string) (*ProviderUser, error) {
	return c.createAccount(ctx, c.config.BaseURL+"/admin/users", signUpRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}, true)
}

func (c *IdentityClient) createAccount(ctx context.Context, endpoint string, reqBody signUpRequest, admin bool) (*ProviderUser, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create signup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.config.ServiceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read signup response: %w", err)
	}

	if resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrEmailExists
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("signup failed with status %d: %s", resp.StatusCode, string(body))
	}

	var user ProviderUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse signup response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("empty user id in signup response")
	}

	return &user, nil
}

// SignInWithPassword はパスワードグラントでアクセストークンを取得する。
// 認証情報が一致しない場合はErrInvalidCredentialsを返す。
func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*TokenResponse, error) {
	payload, err := json.Marshal(passwordGrantRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/token?grant_type=password", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token grant failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}

	return &tokenResp, nil
}

// GetUser はアクセストークンを検証し、対応するアカウント情報を取得する。
// トークンが無効な場合はErrInvalidTokenを返す。
func (c *IdentityClient) GetUser(ctx context.Context, accessToken string) (*ProviderUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var user ProviderUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("empty user id in user info response")
	}

	return &user, nil
}

// AdminDeleteUser はサービスキーを使用してIDプロバイダーのアカウントを削除する。
// ユーザー行の作成に失敗した際の補償削除にも使用する。
func (c *IdentityClient) AdminDeleteUser(ctx context.Context, providerUserID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.config.BaseURL+"/admin/users/"+providerUserID, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.ServiceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("account deletion failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
