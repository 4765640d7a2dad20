package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/joseph-ayodele/purchase-orders/internal/export"
)

// ExportOrders handles GET /api/v1/orders/export. It takes the same filters as ListOrders.
func (s *Server) ExportOrders(w http.ResponseWriter, r *http.Request) {
	format := export.FormatCSV
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = export.ParseFormat(f); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	req, err := searchRequestFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// nothing reaches w until the export succeeds
	var buf bytes.Buffer
	n, err := s.deps.Export.ExportOrders(r.Context(), req, format, &buf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name := fmt.Sprintf("orders_%s.%s", time.Now().Format("20060102_150405"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Row-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
