package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"tasklist/internal/middleware"
	"tasklist/internal/models"
	"tasklist/internal/repositories"
	"tasklist/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Register(ctx context.Context, in services.RegisterInput) (*models.Account, error) {
	args := m.Called(in)
	a, _ := args.Get(0).(*models.Account)
	return a, args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	args := m.Called(email, password)
	r, _ := args.Get(0).(*services.LoginResult)
	return r, args.Error(1)
}

func (m *mockAuth) SendCode(ctx context.Context, email string) error {
	return m.Called(email).Error(0)
}

func (m *mockAuth) ResendCode(ctx context.Context, email string) error {
	return m.Called(email).Error(0)
}

func (m *mockAuth) VerifyEmail(ctx context.Context, email, code string) error {
	return m.Called(email, code).Error(0)
}

func (m *mockAuth) Me(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(accountID)
	a, _ := args.Get(0).(*models.Account)
	return a, args.Error(1)
}

func (m *mockAuth) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	args := m.Called(token)
	a, _ := args.Get(0).(*models.Account)
	return a, args.Error(1)
}

type mockLists struct{ mock.Mock }

func (m *mockLists) Create(ctx context.Context, ownerID string, in models.TaskListInput) (*models.TaskList, error) {
	args := m.Called(ownerID, in)
	l, _ := args.Get(0).(*models.TaskList)
	return l, args.Error(1)
}

func (m *mockLists) List(ctx context.Context, ownerID string) ([]models.TaskList, error) {
	args := m.Called(ownerID)
	l, _ := args.Get(0).([]models.TaskList)
	return l, args.Error(1)
}

func (m *mockLists) Get(ctx context.Context, ownerID, id string) (*models.TaskList, error) {
	args := m.Called(ownerID, id)
	l, _ := args.Get(0).(*models.TaskList)
	return l, args.Error(1)
}

func (m *mockLists) Update(ctx context.Context, ownerID, id string, in models.TaskListInput) (*models.TaskList, error) {
	args := m.Called(ownerID, id, in)
	l, _ := args.Get(0).(*models.TaskList)
	return l, args.Error(1)
}

func (m *mockLists) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ownerID, id).Error(0)
}

type mockTasks struct{ mock.Mock }

func (m *mockTasks) Create(ctx context.Context, ownerID, listID string, in models.TaskInput) (*models.Task, error) {
	args := m.Called(ownerID, listID, in)
	t, _ := args.Get(0).(*models.Task)
	return t, args.Error(1)
}

func (m *mockTasks) List(ctx context.Context, ownerID, listID string, f repositories.TaskFilter) ([]models.Task, error) {
	args := m.Called(ownerID, listID, f)
	t, _ := args.Get(0).([]models.Task)
	return t, args.Error(1)
}

func (m *mockTasks) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	args := m.Called(ownerID, id)
	t, _ := args.Get(0).(*models.Task)
	return t, args.Error(1)
}

func (m *mockTasks) Update(ctx context.Context, ownerID, id string, in models.TaskInput) (*models.Task, error) {
	args := m.Called(ownerID, id, in)
	t, _ := args.Get(0).(*models.Task)
	return t, args.Error(1)
}

func (m *mockTasks) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ownerID, id).Error(0)
}

// asAccount stands in for AuthMiddleware.
func asAccount(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AccountIDKey, id)
		c.Set(middleware.AccountKey, &models.Account{ID: id, Email: id + "@example.com", IsVerified: true})
		c.Next()
	}
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
