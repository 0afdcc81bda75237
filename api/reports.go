package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sagniknandigit/internship-management/internal/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reports *reports.Service
}

func NewReportHandler(svc *reports.Service) *ReportHandler {
	return &ReportHandler{reports: svc}
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Report(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Export streams the report as a workbook. It is rendered into memory first
// so a failure still yields a JSON error.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Report(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteXLSX(*rep, &buf); err != nil {
		writeError(w, r, fmt.Errorf("render workbook: %w", err))
		return
	}
	name := "report-" + rep.GeneratedAt.Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
