package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aidra-health/aidra/pkg/Logger"
)

const testSecret = "test-secret"

func TestMintAndValidateToken(t *testing.T) {
	token, userID, err := MintGuestToken(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("MintGuestToken failed: %v", err)
	}
	if token == "" || userID == "" {
		t.Fatal("Expected a token and user id")
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("Expected user id %s, got %s", userID, claims.UserID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, err := MintGuestToken(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("MintGuestToken failed: %v", err)
	}
	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Error("Expected validation with the wrong secret to fail")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, _, err := MintGuestToken(testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("MintGuestToken failed: %v", err)
	}
	if _, err := ValidateToken(testSecret, token); err == nil {
		t.Error("Expected expired token to fail validation")
	}
}

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(testSecret, Logger.Nop()), func(c *gin.Context) {
		id, ok := UserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id.String()})
	})
	return r
}

func TestAuthMiddlewareHeader(t *testing.T) {
	token, _, _ := MintGuestToken(testSecret, time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authTestRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with a valid token, got %d", w.Code)
	}
}

func TestAuthMiddlewareQueryFallback(t *testing.T) {
	token, _, _ := MintGuestToken(testSecret, time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	authTestRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with a query token, got %d", w.Code)
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	router := authTestRouter()

	// Missing token.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", w.Code)
	}

	// Garbage token.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a malformed token, got %d", w.Code)
	}
}
