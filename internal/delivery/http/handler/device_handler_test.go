package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"terminal-inventory/internal/domain/customer"
	"terminal-inventory/internal/domain/device"
	"terminal-inventory/internal/logger"
	"terminal-inventory/internal/usecase/inventory"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// In-memory repositories so routes are exercised against the real service.
type memDeviceRepo struct {
	rows    map[uuid.UUID]*device.Device
	serials map[string]bool
}

func newMemDeviceRepo() *memDeviceRepo {
	return &memDeviceRepo{rows: make(map[uuid.UUID]*device.Device), serials: make(map[string]bool)}
}

func (r *memDeviceRepo) List(_ context.Context) ([]*device.Device, error) {
	devices := make([]*device.Device, 0, len(r.rows))
	for _, d := range r.rows {
		clone := *d
		devices = append(devices, &clone)
	}
	return devices, nil
}

func (r *memDeviceRepo) GetByID(_ context.Context, deviceID uuid.UUID) (*device.Device, error) {
	d, ok := r.rows[deviceID]
	if !ok {
		return nil, device.ErrDeviceNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *memDeviceRepo) Create(_ context.Context, d *device.Device) error {
	if r.serials[d.SerialNumber] {
		return device.ErrDuplicateSerial
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	clone := *d
	r.rows[d.ID] = &clone
	r.serials[d.SerialNumber] = true
	return nil
}

func (r *memDeviceRepo) CreateBatch(ctx context.Context, devices []*device.Device) error {
	for _, d := range devices {
		if r.serials[d.SerialNumber] {
			return device.ErrDuplicateSerial
		}
	}
	for _, d := range devices {
		if err := r.Create(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *memDeviceRepo) Checkout(_ context.Context, deviceID uuid.UUID, exitDate time.Time, reason device.RemovalReason, customerID uuid.UUID) error {
	d, ok := r.rows[deviceID]
	if !ok {
		return device.ErrDeviceNotFound
	}
	if d.ExitDate != nil {
		return device.ErrAlreadyCheckedOut
	}
	d.ExitDate = &exitDate
	d.RemovalReason = &reason
	d.CustomerID = &customerID
	return nil
}

func (r *memDeviceRepo) Return(_ context.Context, deviceID uuid.UUID) error {
	d, ok := r.rows[deviceID]
	if !ok {
		return device.ErrDeviceNotFound
	}
	if d.ExitDate == nil {
		return device.ErrNotCheckedOut
	}
	d.ExitDate = nil
	d.RemovalReason = nil
	d.CustomerID = nil
	return nil
}

type memCustomerRepo struct {
	customers map[string]*customer.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[string]*customer.Customer)}
}

func (r *memCustomerRepo) ResolveOrCreate(_ context.Context, info customer.Info) (*customer.Customer, error) {
	if c, ok := r.customers[info.Key()]; ok {
		return c, nil
	}
	c := &customer.Customer{ID: uuid.New(), Info: info, CreatedAt: time.Now()}
	r.customers[info.Key()] = c
	return c, nil
}

func newTestRouter() *gin.Engine {
	service := inventory.NewService(newMemDeviceRepo(), newMemCustomerRepo())
	deviceHandler := NewDeviceHandler(service)

	router := gin.New()
	v1 := router.Group("/api/v1")
	deviceHandler.RegisterRoutes(v1)
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func addDevice(t *testing.T, router *gin.Engine, model, serial string) inventory.DeviceResponse {
	t.Helper()
	w, env := doJSON(t, router, http.MethodPost, "/api/v1/devices", gin.H{
		"model_name":    model,
		"serial_number": serial,
		"entry_date":    "2023-03-10T00:00:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add device: status %d, body %s", w.Code, w.Body.String())
	}
	var d inventory.DeviceResponse
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("decode device: %v", err)
	}
	return d
}

func checkoutBody(reason string) gin.H {
	return gin.H{
		"exit_date": "2023-06-01T00:00:00Z",
		"reason":    reason,
		"customer": gin.H{
			"name":         "Alpha Ltd",
			"terminal_id":  "TER-1234",
			"email":        "alpha@example.com",
			"phone":        "052-1234567",
			"account_code": "ACC-001",
		},
	}
}

func TestAddAndGetDevice(t *testing.T) {
	router := newTestRouter()

	added := addDevice(t, router, "PAX A920", "S1")

	w, env := doJSON(t, router, http.MethodGet, "/api/v1/devices/"+added.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get device: status %d", w.Code)
	}
	var got inventory.DeviceResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode device: %v", err)
	}
	if got.SerialNumber != "S1" || got.ModelName != "PAX A920" {
		t.Errorf("got %+v, want serial S1 model PAX A920", got)
	}
	if got.ExitDate != nil || got.RemovalReason != nil || got.Customer != nil {
		t.Error("new device must be available")
	}
}

func TestAddDeviceValidation(t *testing.T) {
	router := newTestRouter()

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/devices", gin.H{
		"serial_number": "S1",
		"entry_date":    "2023-03-10T00:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Success {
		t.Error("success must be false on validation failure")
	}
}

func TestDuplicateSerialConflict(t *testing.T) {
	router := newTestRouter()

	addDevice(t, router, "PAX A920", "S1")
	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/devices", gin.H{
		"model_name":    "PAX A920",
		"serial_number": "S1",
		"entry_date":    "2023-03-10T00:00:00Z",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	router := newTestRouter()

	w, _ := doJSON(t, router, http.MethodGet, "/api/v1/devices/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/devices/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d for malformed id, want 400", w.Code)
	}
}

func TestCheckoutAndReturnFlow(t *testing.T) {
	router := newTestRouter()

	added := addDevice(t, router, "PAX A920", "S1")
	checkoutPath := fmt.Sprintf("/api/v1/devices/%s/checkout", added.ID)
	returnPath := fmt.Sprintf("/api/v1/devices/%s/return", added.ID)

	w, env := doJSON(t, router, http.MethodPost, checkoutPath, checkoutBody("rental"))
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: status %d, body %s", w.Code, w.Body.String())
	}
	var out inventory.DeviceResponse
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode device: %v", err)
	}
	if out.RemovalReason == nil || *out.RemovalReason != "rental" {
		t.Errorf("RemovalReason = %v, want rental", out.RemovalReason)
	}
	if out.Customer == nil || out.Customer.Name != "Alpha Ltd" {
		t.Errorf("Customer = %+v, want Alpha Ltd", out.Customer)
	}

	w, _ = doJSON(t, router, http.MethodPost, checkoutPath, checkoutBody("loan"))
	if w.Code != http.StatusConflict {
		t.Errorf("second checkout: status %d, want 409", w.Code)
	}

	w, env = doJSON(t, router, http.MethodPost, returnPath, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("return: status %d, body %s", w.Code, w.Body.String())
	}
	var returned inventory.DeviceResponse
	if err := json.Unmarshal(env.Data, &returned); err != nil {
		t.Fatalf("decode device: %v", err)
	}
	if returned.ExitDate != nil || returned.RemovalReason != nil || returned.Customer != nil {
		t.Error("returned device must be available again")
	}

	w, _ = doJSON(t, router, http.MethodPost, returnPath, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("second return: status %d, want 409", w.Code)
	}
}

func TestCheckoutRejectsUnknownReason(t *testing.T) {
	router := newTestRouter()

	added := addDevice(t, router, "PAX A920", "S1")
	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/devices/%s/checkout", added.ID), checkoutBody("purchase"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestBatchAdd(t *testing.T) {
	router := newTestRouter()

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/devices/batch", gin.H{
		"model_name":     "Ingenico Move 5000",
		"serial_numbers": []string{"A", "B", "C"},
		"entry_date":     "2023-03-10T00:00:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var result inventory.BatchCreateResponse
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.CreatedCount != 3 {
		t.Errorf("CreatedCount = %d, want 3", result.CreatedCount)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/devices/batch", gin.H{
		"model_name":     "Ingenico Move 5000",
		"serial_numbers": []string{"D", "D"},
		"entry_date":     "2023-03-10T00:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate serials in batch: status %d, want 400", w.Code)
	}
}

func TestBatchCheckout(t *testing.T) {
	router := newTestRouter()

	a := addDevice(t, router, "X", "A")
	b := addDevice(t, router, "X", "B")

	w, env := doJSON(t, router, http.MethodPost, "/api/v1/devices/checkout-batch", gin.H{
		"device_ids": []string{a.ID.String(), b.ID.String(), uuid.NewString()},
		"exit_date":  "2023-06-01T00:00:00Z",
		"reason":     "loan",
		"customer":   checkoutBody("loan")["customer"],
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var result inventory.BulkOperationResponse
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Errorf("got %d/%d success/failed, want 2/1", result.SuccessCount, result.FailedCount)
	}
}

func TestStatsAndModels(t *testing.T) {
	router := newTestRouter()

	addDevice(t, router, "PAX A920", "S1")
	addDevice(t, router, "PAX A920", "S2")
	sold := addDevice(t, router, "Verifone V240m", "S3")
	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/devices/%s/checkout", sold.ID), checkoutBody("sale"))
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: status %d", w.Code)
	}

	w, env := doJSON(t, router, http.MethodGet, "/api/v1/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d", w.Code)
	}
	var stats inventory.StatsResponse
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalDevices != 3 || stats.AvailableDevices != 2 || stats.SoldDevices != 1 {
		t.Errorf("stats = %+v, want 3 total, 2 available, 1 sold", stats)
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/v1/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("models: status %d", w.Code)
	}
	var models []inventory.ModelSummaryResponse
	if err := json.Unmarshal(env.Data, &models); err != nil {
		t.Fatalf("decode models: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 model summaries, got %d", len(models))
	}
	if models[0].ID != "pax-a920" || models[0].TotalCount != 2 || models[0].AvailableCount != 2 {
		t.Errorf("first summary = %+v, want pax-a920 2/2", models[0])
	}
}

func TestDevicesByCustomer(t *testing.T) {
	router := newTestRouter()

	a := addDevice(t, router, "X", "A")
	b := addDevice(t, router, "X", "B")
	for _, d := range []inventory.DeviceResponse{a, b} {
		w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/devices/%s/checkout", d.ID), checkoutBody("rental"))
		if w.Code != http.StatusOK {
			t.Fatalf("checkout: status %d", w.Code)
		}
	}

	w, env := doJSON(t, router, http.MethodGet, "/api/v1/devices/by-customer?reason=rental", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var groups []inventory.CustomerGroupResponse
	if err := json.Unmarshal(env.Data, &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Devices) != 2 {
		t.Errorf("groups = %+v, want one group of two devices", groups)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/devices/by-customer", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing reason: status %d, want 400", w.Code)
	}
}

func TestListDevicesQueryFilters(t *testing.T) {
	router := newTestRouter()

	addDevice(t, router, "PAX A920", "S1")
	out := addDevice(t, router, "Verifone V240m", "S2")
	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/devices/%s/checkout", out.ID), checkoutBody("rental"))
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: status %d", w.Code)
	}

	w, env := doJSON(t, router, http.MethodGet, "/api/v1/devices?available=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list inventory.DeviceListResponse
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || list.Devices[0].SerialNumber != "S1" {
		t.Errorf("available filter = %+v, want just S1", list.Devices)
	}

	w, env = doJSON(t, router, http.MethodGet, "/api/v1/devices?search=verifone", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || list.Devices[0].SerialNumber != "S2" {
		t.Errorf("search filter = %+v, want just S2", list.Devices)
	}
}
