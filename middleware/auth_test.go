package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"records-portal-api/config"
	"records-portal-api/models"
	"records-portal-api/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthDB(t *testing.T) (*gorm.DB, testutil.Users) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	db := testutil.OpenTestDB(t)
	previous := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = previous })
	return db, testutil.SeedUsers(t, db)
}

func signToken(t *testing.T, userID int, method jwt.SigningMethod, key interface{}, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(method, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func authRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("role"), "userID": c.GetInt("userID")})
	})
	router.GET("/whoami", handlers...)
	return router
}

func call(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareReadsRoleOnEveryRequest(t *testing.T) {
	db, users := setupAuthDB(t)
	router := authRouter()
	userID := users[models.RoleBoardSecretary]
	token := signToken(t, userID, jwt.SigningMethodHS256, []byte(testSecret), time.Hour)

	w := call(router, token)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.RoleBoardSecretary, body["role"])
	assert.EqualValues(t, userID, body["userID"])

	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", userID).Update("role", models.RoleBoardChair).Error)

	w = call(router, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.RoleBoardChair, body["role"])
}

func TestAuthMiddlewareRejections(t *testing.T) {
	db, users := setupAuthDB(t)
	router := authRouter()

	inactive := users[models.RoleHR]
	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", inactive).Update("is_active", false).Error)
	unknownRole := users[models.RoleBoard]
	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", unknownRole).Update("role", "janitor").Error)

	valid := func(id int) string {
		return signToken(t, id, jwt.SigningMethodHS256, []byte(testSecret), time.Hour)
	}

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "wrong secret", token: signToken(t, users[models.RoleAdmin], jwt.SigningMethodHS256, []byte("other"), time.Hour), want: http.StatusUnauthorized},
		{name: "wrong algorithm", token: signToken(t, users[models.RoleAdmin], jwt.SigningMethodHS512, []byte(testSecret), time.Hour), want: http.StatusUnauthorized},
		{name: "expired", token: signToken(t, users[models.RoleAdmin], jwt.SigningMethodHS256, []byte(testSecret), -time.Minute), want: http.StatusUnauthorized},
		{name: "unknown user", token: valid(9999), want: http.StatusUnauthorized},
		{name: "inactive user", token: valid(inactive), want: http.StatusUnauthorized},
		{name: "unknown role", token: valid(unknownRole), want: http.StatusForbidden},
		{name: "valid", token: valid(users[models.RoleAdmin]), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			switch {
			case tt.header != "":
				req.Header.Set("Authorization", tt.header)
			case tt.token != "":
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	_, users := setupAuthDB(t)
	router := authRouter(RequireRole(models.RoleRecordsOfficer, models.RoleAdmin))

	for role, want := range map[string]int{
		models.RoleRecordsOfficer: http.StatusOK,
		models.RoleAdmin:          http.StatusOK,
		models.RoleChiefOfficer:   http.StatusForbidden,
		models.RoleBoard:          http.StatusForbidden,
	} {
		token := signToken(t, users[role], jwt.SigningMethodHS256, []byte(testSecret), time.Hour)
		assert.Equal(t, want, call(router, token).Code, role)
	}
}
