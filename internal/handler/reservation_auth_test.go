package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/classtrack-api/internal/middleware"
	"github.com/campusops/classtrack-api/internal/models"
	"github.com/campusops/classtrack-api/internal/service"
)

const bookingTestSecret = "handler-test-secret"

func signBookingToken(t *testing.T) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:   "u1",
		Username: "staff",
		Role:     models.RoleStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "classtrack-api",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(bookingTestSecret))
	require.NoError(t, err)
	return signed
}

// Booking writes sit behind the JWT middleware; only reads are anonymous.
func TestReservationCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(nil, nil, nil, service.AuthConfig{
		TokenSecret: bookingTestSecret,
		TokenExpiry: time.Hour,
		Issuer:      "classtrack-api",
	})
	srv := &fakeReservationSrv{
		created: &models.Reservation{ID: "r1", RoomID: "A101", SlotID: 6, Date: "2025-03-10"},
	}
	handler := NewReservationHandler(srv, &fakeConflictChecker{})

	router := gin.New()
	router.POST("/api/v1/reservations", middleware.JWT(authSvc), handler.Create)

	body := `{"room_id":"A101","slot_id":6,"date":"2025-03-10","purpose":"Seminar"}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, srv.lastCreate.RoomID)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signBookingToken(t))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "A101", srv.lastCreate.RoomID)
}
