package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tablediff-io/tablediff-engine/pkg/apperrors"
	"github.com/tablediff-io/tablediff-engine/pkg/diff"
	"github.com/tablediff-io/tablediff-engine/pkg/services"
)

// TableDiffRequest identifies the two tables to compare. conn_2 and
// table_2 default to conn_1 and table_1 when omitted, so a single
// table can be compared against itself on another connection.
type TableDiffRequest struct {
	Conn1  string `json:"conn_1"`
	Table1 string `json:"table_1"`
	Conn2  string `json:"conn_2"`
	Table2 string `json:"table_2"`
}

// ColumnsData is the schema comparison section of a diff response.
type ColumnsData struct {
	Table1UncommonColumns      []string                 `json:"table_1_uncommon_columns"`
	Table2UncommonColumns      []string                 `json:"table_2_uncommon_columns"`
	CommonColumns              []string                 `json:"common_columns"`
	CommonColumnsDifferentType map[string]diff.TypePair `json:"common_columns_different_type"`
}

// TableRowsData is one table's row count and metric values.
type TableRowsData struct {
	RowCount int64                         `json:"row_count"`
	Metrics  map[string]map[string]float64 `json:"metrics"`
}

// TableDiffResponse is the full diff payload.
type TableDiffResponse struct {
	ColumnsData ColumnsData              `json:"columns_data"`
	RowsData    map[string]TableRowsData `json:"rows_data"`
	MetricsDiff map[string]any           `json:"metrics_diff"`
}

// TableColumnsData describes one table's columns for column discovery.
type TableColumnsData struct {
	ColumnsTypeMap diff.ColumnTypeMap `json:"columns_type_map"`
	NumericColumns []string           `json:"numeric_columns"`
}

// DiffHandler serves the comparison API.
type DiffHandler struct {
	service services.ComparisonService
	logger  *zap.Logger
}

// NewDiffHandler creates a DiffHandler backed by the comparison service.
func NewDiffHandler(service services.ComparisonService, logger *zap.Logger) *DiffHandler {
	return &DiffHandler{service: service, logger: logger}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *DiffHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/getTableDiff/{$}", h.GetTableDiff)
	mux.HandleFunc("POST /api/getAvailableColumns/{$}", h.GetAvailableColumns)
	mux.HandleFunc("GET /api/getAvailableMetrics/{$}", h.GetAvailableMetrics)
	mux.HandleFunc("POST /api/checkConnection/{$}", h.CheckConnection)
}

// CheckConnectionRequest carries the descriptor to verify.
type CheckConnectionRequest struct {
	Conn string `json:"conn"`
}

// CheckConnection handles POST /api/checkConnection/.
// Verifies the descriptor resolves to a registered driver and that the
// database answers a ping.
func (h *DiffHandler) CheckConnection(w http.ResponseWriter, r *http.Request) {
	var req CheckConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Conn == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "conn is required")
		return
	}

	if err := h.service.TestConnection(r.Context(), req.Conn); err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		h.logger.Error("Failed to encode check connection response", zap.Error(err))
	}
}

// GetTableDiff handles POST /api/getTableDiff/.
// Compares the two tables' schemas and numeric column metrics.
func (h *DiffHandler) GetTableDiff(w http.ResponseWriter, r *http.Request) {
	var req TableDiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Conn1 == "" || req.Table1 == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "conn_1 and table_1 are required")
		return
	}
	if req.Conn2 == "" {
		req.Conn2 = req.Conn1
	}
	if req.Table2 == "" {
		req.Table2 = req.Table1
	}

	result, err := h.service.CompareTables(r.Context(),
		services.TableTarget{Descriptor: req.Conn1, Table: req.Table1},
		services.TableTarget{Descriptor: req.Conn2, Table: req.Table2},
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	metricsDiff := make(map[string]any, len(result.MetricsDiff.Percent)+1)
	for metric, cols := range result.MetricsDiff.Percent {
		metricsDiff[metric] = cols
	}
	metricsDiff["row_count_diff"] = result.MetricsDiff.RowCountDiff

	response := TableDiffResponse{
		ColumnsData: ColumnsData{
			Table1UncommonColumns:      result.Columns.OnlyInTable1,
			Table2UncommonColumns:      result.Columns.OnlyInTable2,
			CommonColumns:              result.Columns.Common,
			CommonColumnsDifferentType: result.Columns.TypeMismatches,
		},
		RowsData: map[string]TableRowsData{
			"table_1": {RowCount: result.Table1.RowCount, Metrics: result.Table1.Metrics},
			"table_2": {RowCount: result.Table2.RowCount, Metrics: result.Table2.Metrics},
		},
		MetricsDiff: metricsDiff,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode diff response", zap.Error(err))
	}
}

// GetAvailableColumns handles POST /api/getAvailableColumns/.
// Lists each table's columns with vendor types plus its numeric
// columns. When the request resolves to a single table the response
// carries one "table" entry instead of a pair.
func (h *DiffHandler) GetAvailableColumns(w http.ResponseWriter, r *http.Request) {
	var req TableDiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Conn1 == "" || req.Table1 == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "conn_1 and table_1 are required")
		return
	}

	includeSecond := true
	if req.Table2 == "" {
		if req.Conn2 == "" {
			includeSecond = false
		} else {
			req.Table2 = req.Table1
		}
	} else if req.Conn2 == "" {
		req.Conn2 = req.Conn1
	}
	if req.Conn1 == req.Conn2 && req.Table1 == req.Table2 {
		includeSecond = false
	}

	schema1, err := h.service.InspectTable(r.Context(),
		services.TableTarget{Descriptor: req.Conn1, Table: req.Table1})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if !includeSecond {
		response := map[string]TableColumnsData{
			"table": tableColumnsData(schema1),
		}
		if err := WriteJSON(w, http.StatusOK, response); err != nil {
			h.logger.Error("Failed to encode columns response", zap.Error(err))
		}
		return
	}

	schema2, err := h.service.InspectTable(r.Context(),
		services.TableTarget{Descriptor: req.Conn2, Table: req.Table2})
	if err != nil {
		h.writeError(w, err)
		return
	}

	response := map[string]TableColumnsData{
		"table_1": tableColumnsData(schema1),
		"table_2": tableColumnsData(schema2),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode columns response", zap.Error(err))
	}
}

// GetAvailableMetrics handles GET /api/getAvailableMetrics/.
// The body is the bare ordered list of registered metric names.
func (h *DiffHandler) GetAvailableMetrics(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, h.service.MetricNames()); err != nil {
		h.logger.Error("Failed to encode metrics response", zap.Error(err))
	}
}

func tableColumnsData(schema *diff.SchemaInfo) TableColumnsData {
	numeric := schema.NumericColumns()
	if numeric == nil {
		numeric = []string{}
	}
	return TableColumnsData{
		ColumnsTypeMap: schema.ColumnTypeMap(),
		NumericColumns: numeric,
	}
}

// writeError maps comparison errors to 400 with their description and
// everything else to an opaque 500.
func (h *DiffHandler) writeError(w http.ResponseWriter, err error) {
	if apperrors.IsComparisonError(err) {
		_ = ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("comparison failed", zap.Error(err))
	_ = ErrorResponse(w, http.StatusInternalServerError, "internal server error")
}
