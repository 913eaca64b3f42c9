package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/user"
)

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	listFn   func(ctx context.Context) ([]*model.User, error)
	createFn func(ctx context.Context, params user.CreateParams) (*model.User, error)
	updateFn func(ctx context.Context, id string, params user.UpdateParams) (*model.User, error)
	deleteFn func(ctx context.Context, callerID, id string) error
}

func (m *mockUserService) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserService) Create(ctx context.Context, params user.CreateParams) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) Update(ctx context.Context, id string, params user.UpdateParams) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, params)
	}
	return nil, nil
}

func (m *mockUserService) Delete(ctx context.Context, callerID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, callerID, id)
	}
	return nil
}

// --- GET /api/users テスト ---

func TestUserHandler_List_Success(t *testing.T) {
	svc := &mockUserService{
		listFn: func(ctx context.Context) ([]*model.User, error) {
			return []*model.User{testUser()}, nil
		},
	}

	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var result userListResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(result.Users))
	}
}

// --- POST /api/users/create テスト ---

func TestUserHandler_Create_Success(t *testing.T) {
	svc := &mockUserService{
		createFn: func(ctx context.Context, params user.CreateParams) (*model.User, error) {
			if params.Email != "suzuki@example.com" {
				t.Errorf("email = %q, want suzuki@example.com", params.Email)
			}
			if params.UserType != model.UserTypeAdmin {
				t.Errorf("userType = %q, want admin", params.UserType)
			}
			if params.DepartmentID == nil || *params.DepartmentID != "dept-1" {
				t.Errorf("departmentID = %v, want dept-1", params.DepartmentID)
			}
			return testUser(), nil
		},
	}

	h := NewUserHandler(svc)

	body := `{"email": "suzuki@example.com", "password": "secret-password", "name": "鈴木一郎", "user_type": "admin", "department_id": "dept-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/create", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
}

func TestUserHandler_Create_InvalidUserType_ReturnsBadRequest(t *testing.T) {
	svc := &mockUserService{
		createFn: func(ctx context.Context, params user.CreateParams) (*model.User, error) {
			return nil, model.NewValidationError("userType")
		},
	}

	h := NewUserHandler(svc)

	body := `{"email": "suzuki@example.com", "password": "secret-password", "name": "鈴木一郎", "user_type": "superuser"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/create", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Create(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

// --- PATCH /api/users/:id テスト ---

func TestUserHandler_Update_DepartmentNull_ClearsDepartment(t *testing.T) {
	// department_id: null は「解除する」を意味する
	svc := &mockUserService{
		updateFn: func(ctx context.Context, id string, params user.UpdateParams) (*model.User, error) {
			if !params.DepartmentIDSet {
				t.Error("DepartmentIDSet = false, want true")
			}
			if params.DepartmentID != nil {
				t.Errorf("DepartmentID = %v, want nil", *params.DepartmentID)
			}
			return testUser(), nil
		},
	}

	h := NewUserHandler(svc)

	body := `{"department_id": null}`
	req := httptest.NewRequest(http.MethodPatch, "/api/users/user-123", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withChiURLParam(req, "id", "user-123")
	w := httptest.NewRecorder()

	h.Update(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestUserHandler_Update_DepartmentAbsent_LeavesDepartment(t *testing.T) {
	// department_idキーが無い場合は変更しない
	svc := &mockUserService{
		updateFn: func(ctx context.Context, id string, params user.UpdateParams) (*model.User, error) {
			if params.DepartmentIDSet {
				t.Error("DepartmentIDSet = true, want false")
			}
			if params.Name == nil || *params.Name != "佐藤花子" {
				t.Errorf("Name = %v, want 佐藤花子", params.Name)
			}
			return testUser(), nil
		},
	}

	h := NewUserHandler(svc)

	body := `{"name": "佐藤花子"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/users/user-123", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withChiURLParam(req, "id", "user-123")
	w := httptest.NewRecorder()

	h.Update(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestUserHandler_Update_DepartmentValue_SetsDepartment(t *testing.T) {
	svc := &mockUserService{
		updateFn: func(ctx context.Context, id string, params user.UpdateParams) (*model.User, error) {
			if !params.DepartmentIDSet {
				t.Error("DepartmentIDSet = false, want true")
			}
			if params.DepartmentID == nil || *params.DepartmentID != "dept-2" {
				t.Errorf("DepartmentID = %v, want dept-2", params.DepartmentID)
			}
			return testUser(), nil
		},
	}

	h := NewUserHandler(svc)

	body := `{"department_id": "dept-2"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/users/user-123", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withChiURLParam(req, "id", "user-123")
	w := httptest.NewRecorder()

	h.Update(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestUserHandler_Update_NotFound(t *testing.T) {
	svc := &mockUserService{
		updateFn: func(ctx context.Context, id string, params user.UpdateParams) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}

	h := NewUserHandler(svc)

	body := `{"name": "佐藤花子"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/users/nonexistent", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = withChiURLParam(req, "id", "nonexistent")
	w := httptest.NewRecorder()

	h.Update(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

// --- DELETE /api/users/:id テスト ---

func TestUserHandler_Delete_Success(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(ctx context.Context, callerID, id string) error {
			if callerID != "admin-1" {
				t.Errorf("callerID = %q, want admin-1", callerID)
			}
			if id != "user-123" {
				t.Errorf("id = %q, want user-123", id)
			}
			return nil
		},
	}

	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user-123", nil)
	req = withIdentity(req, "admin-1", model.UserTypeAdmin)
	req = withChiURLParam(req, "id", "user-123")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestUserHandler_Delete_Self_ReturnsBadRequest(t *testing.T) {
	svc := &mockUserService{
		deleteFn: func(ctx context.Context, callerID, id string) error {
			return model.NewSelfDeleteError()
		},
	}

	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/admin-1", nil)
	req = withIdentity(req, "admin-1", model.UserTypeAdmin)
	req = withChiURLParam(req, "id", "admin-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	errResp := parseErrorResponse(t, w)
	if errResp.Code != model.ErrCodeSelfDelete {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeSelfDelete)
	}
}

func TestUserHandler_Delete_NoIdentity_ReturnsUnauthorized(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user-123", nil)
	req = withChiURLParam(req, "id", "user-123")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
