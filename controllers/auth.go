package controllers

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"records-portal-api/config"
	"records-portal-api/middleware"
	"records-portal-api/models"
	"records-portal-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var tokenTTL = 24 * time.Hour

// ConfigureAuth sets how long issued tokens stay valid. Non-positive values
// keep the 24 hour default.
func ConfigureAuth(ttl time.Duration) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	tokenTTL = ttl
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string      `json:"token"`
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

// Login handles user authentication
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION"})
		return
	}

	var user models.User
	if err := config.DB.WithContext(c.Request.Context()).
		Where("email = ? AND delete_at IS NULL", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
		return
	}
	if !user.IsActive || !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
		return
	}

	token, err := generateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

// GetProfile returns current user profile
func GetProfile(c *gin.Context) {
	userID := c.GetInt("userID")

	var user models.User
	if err := config.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// generateToken creates JWT token
func generateToken(user models.User) (string, error) {
	now := time.Now()
	claims := middleware.Claims{
		UserID: user.UserID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.Itoa(user.UserID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
