package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tennotools/platwatch-backend/internal/tracking"
	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
)

type stubOrderService struct {
	order   *tracking.Order
	orders  []tracking.Order
	removed int64
	err     error

	lastCreate tracking.CreateParams
}

func (s *stubOrderService) Create(ctx context.Context, params tracking.CreateParams) (*tracking.Order, error) {
	s.lastCreate = params
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) GetByUser(ctx context.Context, userID int64) (*tracking.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) ListByUser(ctx context.Context, userID int64) ([]tracking.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) List(ctx context.Context, limit, offset int) ([]tracking.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	return s.err
}

func (s *stubOrderService) DeleteByUsers(ctx context.Context, userIDs []int64) (int64, error) {
	return s.removed, s.err
}

func TestOrdersCreate(t *testing.T) {
	logg := newTestLogger()

	t.Run("created", func(t *testing.T) {
		stub := &stubOrderService{order: &tracking.Order{ID: uuid.New(), UserID: 7, NotifyUsers: []int64{}}}
		body := `{"user_id":7,"item_id":"abc","platinum_threshold":30}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		OrdersCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastCreate.UserID != 7 || stub.lastCreate.ItemID != "abc" {
			t.Fatalf("service got wrong params %+v", stub.lastCreate)
		}
	})

	t.Run("notify list rejected", func(t *testing.T) {
		stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeValidation, "notification of multiple users is currently not supported")}
		body := `{"user_id":7,"item_id":"abc","platinum_threshold":30,"notify_users":[9]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		OrdersCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"user_id":`))
		rec := httptest.NewRecorder()
		OrdersCreate(&stubOrderService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"user_id":7}`))
		rec := httptest.NewRecorder()
		OrdersCreate(&stubOrderService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")}
		body := `{"user_id":7,"item_id":"nope","platinum_threshold":30}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		OrdersCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestOrdersGetByUser(t *testing.T) {
	logg := newTestLogger()

	t.Run("found", func(t *testing.T) {
		stub := &stubOrderService{order: &tracking.Order{ID: uuid.New(), UserID: 7, NotifyUsers: []int64{}}}
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/user/7", nil), "userID", "7")
		rec := httptest.NewRecorder()
		OrdersGetByUser(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("none", func(t *testing.T) {
		stub := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "no watch order for user")}
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/user/7", nil), "userID", "7")
		rec := httptest.NewRecorder()
		OrdersGetByUser(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("bad user id", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/user/zero", nil), "userID", "zero")
		rec := httptest.NewRecorder()
		OrdersGetByUser(&stubOrderService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestOrdersList(t *testing.T) {
	logg := newTestLogger()

	t.Run("paginates", func(t *testing.T) {
		stub := &stubOrderService{orders: []tracking.Order{{ID: uuid.New()}}}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=10&offset=0", nil)
		rec := httptest.NewRecorder()
		OrdersList(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=abc", nil)
		rec := httptest.NewRecorder()
		OrdersList(&stubOrderService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestOrdersDelete(t *testing.T) {
	logg := newTestLogger()
	orderID := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/orders/"+orderID.String(), nil), "orderID", orderID.String())
		rec := httptest.NewRecorder()
		OrdersDelete(&stubOrderService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/orders/nope", nil), "orderID", "nope")
		rec := httptest.NewRecorder()
		OrdersDelete(&stubOrderService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestOrdersBulkDelete(t *testing.T) {
	logg := newTestLogger()

	t.Run("returns count", func(t *testing.T) {
		stub := &stubOrderService{removed: 3}
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/orders", strings.NewReader(`{"user_ids":[7,8]}`))
		rec := httptest.NewRecorder()
		OrdersBulkDelete(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Data map[string]int64 `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Data["removed"] != 3 {
			t.Fatalf("expected removed=3, got %v", body.Data)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/orders", strings.NewReader(`{"user_ids":[]}`))
		rec := httptest.NewRecorder()
		OrdersBulkDelete(&stubOrderService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
