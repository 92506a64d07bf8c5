package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tennotools/platwatch-backend/api/responses"
	"github.com/tennotools/platwatch-backend/internal/alerts"
	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
	"github.com/tennotools/platwatch-backend/pkg/logger"
)

// SubscribersAdd registers a user for a watch order's alerts. Repeats are
// no-ops, so the route is safe to retry.
func SubscribersAdd(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "alerts service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subscriberID, err := parseSubscriberID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithOrderID(r.Context(), orderID.String())
		if err := svc.Subscribe(ctx, orderID, subscriberID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "subscribed"})
	}
}

// SubscribersRemove drops a user from a watch order's alerts.
func SubscribersRemove(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "alerts service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subscriberID, err := parseSubscriberID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithOrderID(r.Context(), orderID.String())
		if err := svc.Unsubscribe(ctx, orderID, subscriberID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unsubscribed"})
	}
}

// SubscribersList returns the user ids registered for a watch order.
func SubscribersList(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "alerts service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithOrderID(r.Context(), orderID.String())
		ids, err := svc.ListSubscribers(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ids)
	}
}

func parseSubscriberID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "subscriberID")
	subscriberID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || subscriberID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "subscriber id must be a positive integer")
	}
	return subscriberID, nil
}
