package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")
}

type stubPermissionService struct {
	accessible map[string]bool
}

func (s *stubPermissionService) GetPermissionsForRole(role string) ([]models.RolePermission, error) {
	return nil, nil
}

func (s *stubPermissionService) CanAccessPage(role, pageID string) bool {
	return s.accessible[role+"/"+pageID]
}

func (s *stubPermissionService) CanConfirmOrder(role string) bool  { return false }
func (s *stubPermissionService) CanValidateOrder(role string) bool { return false }
func (s *stubPermissionService) UpsertPermission(permission *models.RolePermission) error {
	return nil
}
func (s *stubPermissionService) DeletePermission(role, pageID string) error { return nil }

func authedEngine(role string, handlers ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	chain := append([]gin.HandlerFunc{func(c *gin.Context) {
		c.Set("employeeID", int64(7))
		c.Set("username", "maria")
		c.Set("userRole", role)
	}}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	engine.GET("/probe", chain...)
	return engine
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	engine := gin.New()
	engine.GET("/probe", AuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	engine.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	engine := gin.New()
	engine.GET("/probe", AuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("Authorization", "Token abc")
	engine.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := utils.GenerateAccessToken(7, "maria", models.RoleCashier)
	require.NoError(t, err)

	engine := gin.New()
	engine.GET("/probe", AuthMiddleware(), func(c *gin.Context) {
		employeeID, ok := EmployeeIDFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"employee_id": employeeID, "role": c.GetString("userRole")})
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"employee_id":7`)
	assert.Contains(t, recorder.Body.String(), `"role":"cashier"`)
}

func TestRoleAuthMiddleware(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"admin allowed", models.RoleAdmin, []string{models.RoleAdmin, models.RoleSuperAdmin}, http.StatusOK},
		{"case insensitive", "Admin", []string{models.RoleAdmin}, http.StatusOK},
		{"cashier denied", models.RoleCashier, []string{models.RoleAdmin, models.RoleSuperAdmin}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := authedEngine(tc.role, RoleAuthMiddleware(tc.allowed...))

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/probe", nil)
			engine.ServeHTTP(recorder, request)

			assert.Equal(t, tc.wantCode, recorder.Code)
		})
	}
}

func TestPermissionGateDefaultsToDenied(t *testing.T) {
	perms := &stubPermissionService{accessible: map[string]bool{}}
	engine := authedEngine(models.RoleCashier, PermissionGate(perms, "reports"))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	engine.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestPermissionGateAllowsGrantedPage(t *testing.T) {
	perms := &stubPermissionService{accessible: map[string]bool{"cashier/cash": true}}
	engine := authedEngine(models.RoleCashier, PermissionGate(perms, "cash"))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/probe", nil)
	engine.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}
