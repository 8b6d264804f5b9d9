package handler

import (
	"net/http"
	"testing"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartView(t *testing.T, env *testEnv, r request) dto.CartView {
	t.Helper()
	w := env.do(r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view dto.CartView
	decode(t, w, &view)
	return view
}

func TestCartHandler_Flow(t *testing.T) {
	env := newTestEnv(t)
	session := uuid.NewString()
	honey, coffee := env.products["Miel"], env.products["Café"]

	view := cartView(t, env, request{method: http.MethodGet, path: "/cart", session: session})
	assert.Empty(t, view.Items)
	assert.Equal(t, "0.00", view.TotalPrice)

	cartView(t, env, request{method: http.MethodPost, path: "/cart/items", session: session,
		body: dto.AddItemRequest{ProductID: honey.ID}})
	cartView(t, env, request{method: http.MethodPost, path: "/cart/items", session: session,
		body: dto.AddItemRequest{ProductID: honey.ID, Quantity: 2}})
	view = cartView(t, env, request{method: http.MethodPost, path: "/cart/items", session: session,
		body: dto.AddItemRequest{ProductID: coffee.ID}})

	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, "7.50", view.Items[0].Subtotal)
	assert.Equal(t, "17.49", view.TotalPrice)
	assert.Equal(t, 4, view.TotalItemCount)
	require.Len(t, view.SellerGroups, 1)
	assert.Equal(t, "Ana Pérez", view.SellerGroups[0].SellerName)
	require.Len(t, view.ChannelGroups, 1)
	assert.Equal(t, "5355550001", view.ChannelGroups[0].ChannelID)
	assert.Equal(t, 4, view.ChannelGroups[0].ItemCount)
	assert.Empty(t, view.Unroutable)

	view = cartView(t, env, request{method: http.MethodPut, path: "/cart/items/" + honey.ID.String(), session: session,
		body: map[string]int{"quantity": 1}})
	assert.Equal(t, "12.49", view.TotalPrice)

	view = cartView(t, env, request{method: http.MethodPut, path: "/cart/items/" + coffee.ID.String(), session: session,
		body: map[string]int{"quantity": 0}})
	require.Len(t, view.Items, 1)

	view = cartView(t, env, request{method: http.MethodDelete, path: "/cart/items/" + honey.ID.String(), session: session})
	assert.Empty(t, view.Items)

	cartView(t, env, request{method: http.MethodPost, path: "/cart/items", session: session,
		body: dto.AddItemRequest{ProductID: honey.ID}})
	view = cartView(t, env, request{method: http.MethodDelete, path: "/cart", session: session})
	assert.Empty(t, view.Items)
}

func TestCartHandler_SessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	first, second := uuid.NewString(), uuid.NewString()

	cartView(t, env, request{method: http.MethodPost, path: "/cart/items", session: first,
		body: dto.AddItemRequest{ProductID: env.products["Miel"].ID}})

	assert.Empty(t, cartView(t, env, request{method: http.MethodGet, path: "/cart", session: second}).Items)
	assert.Len(t, cartView(t, env, request{method: http.MethodGet, path: "/cart", session: first}).Items, 1)
}

func TestCartHandler_SignedInUserKeepsCartAcrossDevices(t *testing.T) {
	env := newTestEnv(t)

	cartView(t, env, request{method: http.MethodPost, path: "/cart/items", userID: env.buyer.ID,
		body: dto.AddItemRequest{ProductID: env.products["Miel"].ID}})

	view := cartView(t, env, request{method: http.MethodGet, path: "/cart", userID: env.buyer.ID, session: uuid.NewString()})
	assert.Len(t, view.Items, 1)
}

func TestCartHandler_Errors(t *testing.T) {
	env := newTestEnv(t)
	session := uuid.NewString()

	tests := []struct {
		name   string
		req    request
		status int
		code   string
	}{
		{
			name:   "missing session",
			req:    request{method: http.MethodGet, path: "/cart"},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeMissingCart,
		},
		{
			name: "unknown product",
			req: request{method: http.MethodPost, path: "/cart/items", session: session,
				body: dto.AddItemRequest{ProductID: uuid.New()}},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name: "inactive product",
			req: request{method: http.MethodPost, path: "/cart/items", session: session,
				body: dto.AddItemRequest{ProductID: env.products["Retirado"].ID}},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name: "negative quantity",
			req: request{method: http.MethodPost, path: "/cart/items", session: session,
				body: map[string]any{"product_id": env.products["Miel"].ID, "quantity": -1}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "missing quantity",
			req:    request{method: http.MethodPut, path: "/cart/items/" + uuid.NewString(), session: session, body: map[string]any{}},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "malformed json",
			req:    request{method: http.MethodPost, path: "/cart/items", session: session, body: "not an object"},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}
