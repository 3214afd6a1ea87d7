package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "autorent/internal/app/outbox"
	authsvc "autorent/internal/app/services/auth"
	"autorent/internal/app/services/availability"
	carssvc "autorent/internal/app/services/cars"
	rentalssvc "autorent/internal/app/services/rentals"
	reviewssvc "autorent/internal/app/services/reviews"
	userssvc "autorent/internal/app/services/users"
	domaincar "autorent/internal/domain/car"
	"autorent/internal/domain/shared/money"
	domainuser "autorent/internal/domain/user"
	"autorent/internal/infra/config"
	"autorent/internal/infra/obs"
	"autorent/internal/infra/security"
	"autorent/internal/infra/storage/memory"
)

type testEnv struct {
	handler http.Handler
	auth    *authsvc.Service
	cars    *carssvc.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	rentalRepo := memory.NewRentalRepository()
	carRepo := memory.NewCarRepository()
	userRepo := memory.NewUserRepository()
	reviewRepo := memory.NewReviewRepository()

	sessions := memory.NewSessionStore()
	authService := &authsvc.Service{
		Users:     userRepo,
		Sessions:  sessions,
		Passwords: security.PasswordHasher{Cost: 4},
		Tokens:    security.OpaqueTokenGenerator{},
	}
	carService := &carssvc.Service{Cars: carRepo}
	rentalService := &rentalssvc.Service{
		Rentals:      rentalRepo,
		Cars:         carRepo,
		Availability: availability.Checker{Rentals: rentalRepo},
		Outbox:       memory.NewOutbox(),
		Encoder:      appoutbox.JSONEventEncoder{},
	}
	userService := &userssvc.Service{Users: userRepo, Passwords: security.PasswordHasher{Cost: 4}, Sessions: sessions}
	reviewService := &reviewssvc.Service{Reviews: reviewRepo, Cars: carRepo}

	authMW := AuthMiddleware{Service: authService}
	server := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Auth:           AuthHandler{Service: authService, Users: userService},
		Rental:         RentalHandler{Service: rentalService, Users: userService},
		Car:            CarHandler{Service: carService, DefaultCurrency: "RUB"},
		User:           UserHandler{Users: userService, Auth: authService},
		Review:         ReviewHandler{Service: reviewService},
		AuthMiddleware: authMW.Handle,
	})

	return &testEnv{handler: server.Handler, auth: authService, cars: carService}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signUp(t *testing.T, role domainuser.Role, email string) *authsvc.Credentials {
	t.Helper()
	creds, err := e.auth.SignUp(context.Background(), "", authsvc.SignUpParams{
		Email:    email,
		FullName: "Test User",
		Password: "secret-password",
		Role:     role,
	})
	require.NoError(t, err)
	return creds
}

func (e *testEnv) signUpToken(t *testing.T, role domainuser.Role, email string) string {
	t.Helper()
	return e.signUp(t, role, email).Token
}

func (e *testEnv) seedCar(t *testing.T) string {
	t.Helper()
	c, err := e.cars.Add(context.Background(), "mgr-1", domaincar.CreateParams{
		Brand:       "Toyota",
		Model:       "Camry",
		Year:        2024,
		Type:        domaincar.TypeSedan,
		PricePerDay: money.Must(150000, "RUB"),
	})
	require.NoError(t, err)
	return string(c.ID)
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/sign-up", "", map[string]string{
		"email": "client@example.com", "full_name": "Client", "password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signedUp struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signedUp))
	assert.Equal(t, "client", signedUp.User.Role, "self sign-up always yields a client")
	require.NotEmpty(t, signedUp.Token)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", signedUp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/sign-out", signedUp.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", signedUp.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGates(t *testing.T) {
	env := newTestEnv(t)
	clientToken := env.signUpToken(t, domainuser.RoleClient, "client@example.com")
	managerToken := env.signUpToken(t, domainuser.RoleManager, "manager@example.com")
	adminToken := env.signUpToken(t, domainuser.RoleAdmin, "admin@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous client route", http.MethodGet, "/api/v1/c/cars", "", http.StatusUnauthorized},
		{"client on client route", http.MethodGet, "/api/v1/c/cars", clientToken, http.StatusOK},
		{"client on manager route", http.MethodGet, "/api/v1/m/rentals", clientToken, http.StatusForbidden},
		{"client on admin route", http.MethodGet, "/api/v1/a/users", clientToken, http.StatusForbidden},
		{"manager on manager route", http.MethodGet, "/api/v1/m/rentals", managerToken, http.StatusOK},
		{"manager on admin route", http.MethodGet, "/api/v1/a/users", managerToken, http.StatusForbidden},
		{"admin covers manager route", http.MethodGet, "/api/v1/m/rentals", adminToken, http.StatusOK},
		{"admin on admin route", http.MethodGet, "/api/v1/a/users", adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	carID := env.seedCar(t)
	clientToken := env.signUpToken(t, domainuser.RoleClient, "client@example.com")
	otherToken := env.signUpToken(t, domainuser.RoleClient, "other@example.com")
	managerToken := env.signUpToken(t, domainuser.RoleManager, "manager@example.com")

	start, end := futureDate(1), futureDate(10)

	rec := env.do(t, http.MethodPost, "/api/v1/c/rentals/quote", clientToken, map[string]string{
		"car_id": carID, "start_date": start, "end_date": end,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote struct {
		Days      int `json:"days"`
		TotalCost struct {
			Amount int64 `json:"amount"`
		} `json:"total_cost"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 10, quote.Days)
	assert.Equal(t, int64(1350000), quote.TotalCost.Amount, "10 days with the weekly discount")

	rec = env.do(t, http.MethodPost, "/api/v1/c/rentals", clientToken, map[string]string{
		"car_id": carID, "start_date": start, "end_date": end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)

	t.Run("double booking conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/c/rentals", otherToken, map[string]string{
			"car_id": carID, "start_date": end, "end_date": futureDate(15),
		})
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})

	t.Run("availability reflects the booking", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/c/cars/%s/availability?start_date=%s&end_date=%s", carID, start, end)
		rec := env.do(t, http.MethodGet, path, clientToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var view struct {
			Available bool `json:"available"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.False(t, view.Available)
	})

	t.Run("foreign rental is invisible to other clients", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/c/rentals/"+created.ID, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("manager activates then completes", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/m/rentals/"+created.ID+"/status", managerToken, map[string]string{"status": "active"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPatch, "/api/v1/m/rentals/"+created.ID+"/status", managerToken, map[string]string{"status": "cancelled"})
		assert.Equal(t, http.StatusConflict, rec.Code, "active rentals cannot be cancelled")

		rec = env.do(t, http.MethodPatch, "/api/v1/m/rentals/"+created.ID+"/status", managerToken, map[string]string{"status": "completed"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCancelOwnRental(t *testing.T) {
	env := newTestEnv(t)
	carID := env.seedCar(t)
	clientToken := env.signUpToken(t, domainuser.RoleClient, "client@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/c/rentals", clientToken, map[string]string{
		"car_id": carID, "start_date": futureDate(1), "end_date": futureDate(5),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodPost, "/api/v1/c/rentals/"+created.ID+"/cancel", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cancelled struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)

	// the car frees up immediately
	rec = env.do(t, http.MethodPost, "/api/v1/c/rentals", clientToken, map[string]string{
		"car_id": carID, "start_date": futureDate(1), "end_date": futureDate(5),
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	carID := env.seedCar(t)
	clientToken := env.signUpToken(t, domainuser.RoleClient, "client@example.com")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"end before start", map[string]string{"car_id": carID, "start_date": futureDate(10), "end_date": futureDate(5)}},
		{"past start", map[string]string{"car_id": carID, "start_date": "2020-01-01", "end_date": "2020-01-05"}},
		{"above the cap", map[string]string{"car_id": carID, "start_date": futureDate(1), "end_date": futureDate(62)}},
		{"garbage dates", map[string]string{"car_id": carID, "start_date": "next tuesday", "end_date": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/c/rentals", clientToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	t.Run("unknown car is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/c/rentals", clientToken, map[string]string{
			"car_id": "missing", "start_date": futureDate(1), "end_date": futureDate(5),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestManagerBooksForClient(t *testing.T) {
	env := newTestEnv(t)
	carID := env.seedCar(t)
	client := env.signUp(t, domainuser.RoleClient, "client@example.com")
	managerToken := env.signUpToken(t, domainuser.RoleManager, "manager@example.com")

	clientID := string(client.User.ID)
	rec := env.do(t, http.MethodPost, "/api/v1/m/rentals/for/"+clientID, managerToken, map[string]string{
		"car_id": carID, "start_date": futureDate(1), "end_date": futureDate(5),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, clientID, created.UserID, "the client owns the booking, not the manager")

	t.Run("the client sees it as their own", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/c/rentals/"+created.ID, client.Token, nil)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("unknown owner is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/m/rentals/for/missing", managerToken, map[string]string{
			"car_id": carID, "start_date": futureDate(20), "end_date": futureDate(25),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("clients cannot book for others", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/m/rentals/for/"+clientID, client.Token, map[string]string{
			"car_id": carID, "start_date": futureDate(20), "end_date": futureDate(25),
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestCarSchedule(t *testing.T) {
	env := newTestEnv(t)
	carID := env.seedCar(t)
	clientToken := env.signUpToken(t, domainuser.RoleClient, "client@example.com")
	otherToken := env.signUpToken(t, domainuser.RoleClient, "other@example.com")

	start, end := futureDate(3), futureDate(8)
	rec := env.do(t, http.MethodPost, "/api/v1/c/rentals", clientToken, map[string]string{
		"car_id": carID, "start_date": start, "end_date": end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.do(t, http.MethodGet, "/api/v1/c/cars/"+carID+"/schedule", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view struct {
		CarID string `json:"car_id"`
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, carID, view.CarID)
	require.Len(t, view.Items, 1)
	assert.Equal(t, start, view.Items[0]["start_date"])
	assert.Equal(t, end, view.Items[0]["end_date"])
	assert.Equal(t, "pending", view.Items[0]["status"])
	assert.NotContains(t, view.Items[0], "user_id", "schedule entries hide the renter")
	assert.NotContains(t, view.Items[0], "total_cost", "schedule entries hide the price")

	t.Run("cancelled bookings drop out", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/c/rentals/"+created.ID+"/cancel", clientToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/c/cars/"+carID+"/schedule", otherToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var after struct {
			Items []map[string]any `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
		assert.Empty(t, after.Items)
	})
}

func TestSelfServiceProfile(t *testing.T) {
	env := newTestEnv(t)
	clientToken := env.signUpToken(t, domainuser.RoleClient, "client@example.com")
	env.signUpToken(t, domainuser.RoleClient, "taken@example.com")

	rec := env.do(t, http.MethodGet, "/api/v1/c/profile", clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "client@example.com", profile.Email)

	t.Run("update own name and email", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/c/profile", clientToken, map[string]string{
			"full_name": "Renamed Client", "email": "renamed@example.com",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
		assert.Equal(t, "Renamed Client", profile.FullName)
		assert.Equal(t, "renamed@example.com", profile.Email)
	})

	t.Run("taken email conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/c/profile", clientToken, map[string]string{
			"email": "taken@example.com",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("managers use the same surface", func(t *testing.T) {
		managerToken := env.signUpToken(t, domainuser.RoleManager, "manager@example.com")
		rec := env.do(t, http.MethodGet, "/api/v1/c/profile", managerToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("self delete revokes the session", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/c/profile", clientToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/c/profile", clientToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.signUpToken(t, domainuser.RoleAdmin, "admin@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/a/users", adminToken, map[string]string{
		"email": "mgr@example.com", "full_name": "New Manager", "password": "secret-password", "role": "manager",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var profile struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "manager", profile.Role)

	t.Run("invalid role", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/a/users", adminToken, map[string]string{
			"email": "x@example.com", "full_name": "X", "password": "secret-password", "role": "superuser",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete revokes access", func(t *testing.T) {
		creds, err := env.auth.SignIn(context.Background(), authsvc.SignInParams{Email: "mgr@example.com", Password: "secret-password"})
		require.NoError(t, err)

		rec := env.do(t, http.MethodDelete, "/api/v1/a/users/"+profile.ID, adminToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/m/rentals", creds.Token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
