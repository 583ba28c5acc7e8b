package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/judyrop/restaurant-backend/config"
	"github.com/judyrop/restaurant-backend/internal/recipe"
	"github.com/judyrop/restaurant-backend/models"
)

var testDBCounter int64

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	return SetupRouter(db, cfg, zap.NewNop(), recipe.MockGenerator{}), db
}

func doJSON(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, username, password, role string) string {
	t.Helper()
	w := doJSON(router, "POST", "/api/auth/register", map[string]any{
		"username": username,
		"password": password,
		"role":     role,
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/api/auth/login", map[string]any{
		"username": username,
		"password": password,
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func seedMenu(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()
	category := models.Category{Name: "Mains", DisplayOrder: 1}
	assert.NoError(t, db.Create(&category).Error)
	chicken := models.MenuItem{Name: "Kung Pao Chicken", Price: 10.00, CategoryID: category.ID, IsAvailable: true}
	rice := models.MenuItem{Name: "Steamed Rice", Price: 5.00, CategoryID: category.ID, IsAvailable: true}
	assert.NoError(t, db.Create(&chicken).Error)
	assert.NoError(t, db.Create(&rice).Error)
	return chicken.ID, rice.ID
}

func TestRegisterLoginAndPlaceOrder(t *testing.T) {
	router, db := newTestRouter(t)
	chickenID, riceID := seedMenu(t, db)

	token := registerAndLogin(t, router, "alice", "pw123", "")

	// Client-sent prices must be discarded in favor of catalog prices.
	w := doJSON(router, "POST", "/api/orders", map[string]any{
		"items": []map[string]any{
			{"menu_item_id": chickenID, "quantity": 2, "price": 0.01},
			{"menu_item_id": riceID, "quantity": 1, "price": 0.01},
		},
		"payment_method":   "cash",
		"delivery_address": "12 Main St",
	}, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		OrderID     uint    `json:"order_id"`
		TotalAmount float64 `json:"total_amount"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 25.00, created.TotalAmount)

	w = doJSON(router, "GET", fmt.Sprintf("/api/orders/%d", created.OrderID), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, 25.00, order.TotalAmount)
	assert.Len(t, order.Items, 2)

	w = doJSON(router, "GET", "/api/orders/my", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total   int64 `json:"total"`
		Page    int   `json:"page"`
		PerPage int   `json:"per_page"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
}

func TestRegisterDuplicate(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "POST", "/api/auth/register", map[string]any{
		"username": "alice", "password": "pw123", "email": "alice@example.com",
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/api/auth/register", map[string]any{
		"username": "alice", "password": "other",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, "POST", "/api/auth/register", map[string]any{
		"username": "alice2", "password": "pw123", "email": "alice@example.com",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, "POST", "/api/auth/register", map[string]any{"username": "bob"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFailures(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAndLogin(t, router, "alice", "pw123", "")

	w := doJSON(router, "POST", "/api/auth/login", map[string]any{
		"username": "alice", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/api/auth/login", map[string]any{
		"username": "nobody", "password": "pw123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeStripsPasswordHash(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router, "alice", "pw123", "")

	w := doJSON(router, "GET", "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var profile map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile["username"])
	assert.NotContains(t, profile, "password_hash")
	assert.NotContains(t, profile, "PasswordHash")
	assert.NotNil(t, profile["last_login"])
}

func TestAdminRoleGate(t *testing.T) {
	router, db := newTestRouter(t)
	customerToken := registerAndLogin(t, router, "alice", "pw123", "")
	adminToken := registerAndLogin(t, router, "boss", "adminpw", "admin")

	category := models.Category{Name: "Drinks"}
	assert.NoError(t, db.Create(&category).Error)

	item := map[string]any{"name": "Iced Tea", "price": 3.00, "category_id": category.ID}

	// Missing token surfaces 401, never 403.
	w := doJSON(router, "POST", "/api/admin/menu", item, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/api/admin/menu", item, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/api/admin/menu", item, customerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, "POST", "/api/admin/menu", item, adminToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Bad category and non-positive price.
	w = doJSON(router, "POST", "/api/admin/menu", map[string]any{
		"name": "Ghost Dish", "price": 3.00, "category_id": 9999,
	}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "POST", "/api/admin/menu", map[string]any{
		"name": "Free Dish", "price": -1.00, "category_id": category.ID,
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "GET", "/api/admin/orders", nil, customerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, "GET", "/api/admin/orders", nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderOwnershipOverHTTP(t *testing.T) {
	router, db := newTestRouter(t)
	chickenID, _ := seedMenu(t, db)

	aliceToken := registerAndLogin(t, router, "alice", "pw123", "")
	bobToken := registerAndLogin(t, router, "bob", "pw456", "")
	adminToken := registerAndLogin(t, router, "boss", "adminpw", "admin")

	w := doJSON(router, "POST", "/api/orders", map[string]any{
		"items": []map[string]any{{"menu_item_id": chickenID, "quantity": 1}},
	}, aliceToken)
	assert.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		OrderID uint `json:"order_id"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := fmt.Sprintf("/api/orders/%d", created.OrderID)
	assert.Equal(t, http.StatusForbidden, doJSON(router, "GET", path, nil, bobToken).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, "GET", path, nil, adminToken).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, "GET", "/api/orders/4242", nil, aliceToken).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, "GET", path, nil, "").Code)
}

func TestOrderValidationOverHTTP(t *testing.T) {
	router, db := newTestRouter(t)
	chickenID, _ := seedMenu(t, db)
	token := registerAndLogin(t, router, "alice", "pw123", "")

	w := doJSON(router, "POST", "/api/orders", map[string]any{"items": []map[string]any{}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/orders", map[string]any{
		"items": []map[string]any{{"menu_item_id": chickenID, "quantity": 0}},
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/orders", map[string]any{
		"items": []map[string]any{{"menu_item_id": 9999, "quantity": 1}},
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Failed attempts must leave no orphaned rows behind.
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestAdminStatusUpdateHistory(t *testing.T) {
	router, db := newTestRouter(t)
	chickenID, _ := seedMenu(t, db)
	aliceToken := registerAndLogin(t, router, "alice", "pw123", "")
	adminToken := registerAndLogin(t, router, "boss", "adminpw", "admin")

	w := doJSON(router, "POST", "/api/orders", map[string]any{
		"items": []map[string]any{{"menu_item_id": chickenID, "quantity": 1}},
	}, aliceToken)
	assert.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		OrderID uint `json:"order_id"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := fmt.Sprintf("/api/admin/orders/%d/status", created.OrderID)

	w = doJSON(router, "PUT", path, map[string]any{"status": "confirmed"}, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	var history []models.OrderStatusHistory
	assert.NoError(t, db.Where("order_id = ?", created.OrderID).Find(&history).Error)
	assert.Len(t, history, 1)
	assert.Equal(t, models.StatusPending, history[0].PreviousStatus)
	assert.Equal(t, models.StatusConfirmed, history[0].NewStatus)

	// Same status again: idempotent, no extra history.
	w = doJSON(router, "PUT", path, map[string]any{"status": "confirmed"}, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, db.Where("order_id = ?", created.OrderID).Find(&history).Error)
	assert.Len(t, history, 1)

	w = doJSON(router, "PUT", path, map[string]any{"status": "teleported"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "PUT", "/api/admin/orders/4242/status", map[string]any{"status": "confirmed"}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuListingHidesUnavailable(t *testing.T) {
	router, db := newTestRouter(t)
	chickenID, _ := seedMenu(t, db)

	hidden := models.MenuItem{Name: "Seasonal Special", Price: 9.00, IsAvailable: false}
	assert.NoError(t, db.Create(&hidden).Error)

	w := doJSON(router, "GET", "/api/menu", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var items []models.MenuItem
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 2)
	for _, item := range items {
		assert.True(t, item.IsAvailable)
	}

	// By-id lookup still returns the unavailable row.
	w = doJSON(router, "GET", fmt.Sprintf("/api/menu/%d", hidden.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/menu/%d", chickenID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/menu/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoriesOrdering(t *testing.T) {
	router, db := newTestRouter(t)

	assert.NoError(t, db.Create(&models.Category{Name: "Desserts", DisplayOrder: 2}).Error)
	assert.NoError(t, db.Create(&models.Category{Name: "Starters", DisplayOrder: 1}).Error)

	w := doJSON(router, "GET", "/api/categories", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Len(t, categories, 2)
	assert.Equal(t, "Starters", categories[0].Name)
}

func TestRecipeSuggestionEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "POST", "/api/recipe-suggestion", map[string]any{
		"current_dishes": []string{}, "preferences": "",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Suggestion string `json:"suggestion"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Suggestion, "haven't picked any dishes")

	w = doJSON(router, "POST", "/api/recipe-suggestion", map[string]any{
		"current_dishes": []string{"Kung Pao Chicken"}, "preferences": "mild",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Suggestion, "recommend")

	// current_dishes must be a list.
	w = doJSON(router, "POST", "/api/recipe-suggestion", map[string]any{
		"current_dishes": "Kung Pao Chicken",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, doJSON(router, "GET", "/health", nil, "").Code)
	assert.Equal(t, http.StatusOK, doJSON(router, "GET", "/metrics", nil, "").Code)
	assert.Equal(t, http.StatusOK, doJSON(router, "GET", "/", nil, "").Code)
}
