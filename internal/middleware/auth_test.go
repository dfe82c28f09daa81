package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carmarket/internal/auth"
	"carmarket/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestAuthRequired(t *testing.T) {
	tokens := auth.NewTokens(testSecret)
	app := fiber.New()
	app.Get("/test", AuthRequired(tokens), func(c *fiber.Ctx) error {
		id, ok := Identity(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"userID": id.UserID, "name": id.Name})
	})

	valid, err := tokens.Issue(&models.User{ID: "u-1", Name: "김철수"})
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	unscoped, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Empty Token", "Bearer ", http.StatusUnauthorized},
		{"Garbage Token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"Missing Issuer And Audience", "Bearer " + unscoped, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "u-1", body["userID"])
				assert.Equal(t, "김철수", body["name"])
			} else {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, models.CodeUnauthorized, body.Code)
			}
		})
	}
}
