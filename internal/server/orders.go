package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/purchase-orders/internal/orders"
)

func searchRequestFromQuery(q url.Values) (orders.SearchRequest, error) {
	req := orders.SearchRequest{
		Query:       strings.TrimSpace(q.Get("q")),
		OrderNumber: strings.TrimSpace(q.Get("order_number")),
		StyleCode:   strings.TrimSpace(q.Get("style_code")),
		ColorName:   strings.TrimSpace(q.Get("color_name")),
		MinQuantity: strings.TrimSpace(q.Get("min_quantity")),
		From:        strings.TrimSpace(q.Get("from")),
		To:          strings.TrimSpace(q.Get("to")),
		Sort:        strings.TrimSpace(q.Get("sort")),
		Order:       strings.ToLower(strings.TrimSpace(q.Get("order"))),
	}
	if l := strings.TrimSpace(q.Get("limit")); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return req, badRequest("limit must be a non-negative integer")
		}
		req.Limit = n
	}
	return req, nil
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequestFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Orders.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
