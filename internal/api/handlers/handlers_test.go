package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"chargemodel/internal/dcf"
	"chargemodel/internal/model"
	"chargemodel/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	assumptions := model.DefaultAssumptions()
	assumptions.RampFactors = nil
	irr := dcf.DefaultIRRParams()

	projects := store.NewProjectStore(db)
	documents := store.NewDocumentStore(db)

	calculate := NewCalculateHandler(assumptions, irr)
	projectsHandler := NewProjectsHandler(projects, assumptions, irr)
	documentsHandler := NewDocumentsHandler(projects, documents)
	sensitivity := NewSensitivityHandler(assumptions, irr)
	assumptionsHandler := NewAssumptionsHandler(assumptions)

	r := gin.New()
	api := r.Group("/api/v1")
	{
		api.POST("/calculate", calculate.Calculate)
		api.POST("/projects", projectsHandler.Create)
		api.GET("/projects", projectsHandler.List)
		api.GET("/projects/:id", projectsHandler.Get)
		api.PUT("/projects/:id", projectsHandler.Update)
		api.DELETE("/projects/:id", projectsHandler.Delete)
		api.GET("/projects/:id/valuation", projectsHandler.Valuation)
		api.POST("/projects/:id/documents", documentsHandler.Upload)
		api.GET("/projects/:id/documents", documentsHandler.List)
		api.POST("/sensitivity", sensitivity.Run)
		api.GET("/assumptions", assumptionsHandler.Get)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func referenceInputs() map[string]any {
	return map[string]any{
		"charger_count":      4,
		"capex_per_charger":  100000,
		"opex_rate":          0.1,
		"peak_utilization":   0.5,
		"charging_rate":      0.4,
		"lcfs_credit_value":  150,
		"project_life_years": 10,
		"discount_rate":      0.08,
	}
}

func TestCalculate_OK(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/calculate", map[string]any{
		"inputs": referenceInputs(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		NPV       float64   `json:"npv"`
		IRR       any       `json:"irr"`
		LCOC      any       `json:"lcoc"`
		CashFlows []float64 `json:"cash_flows"`
		Ledger    []any     `json:"ledger"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.CashFlows, 11)
	require.Equal(t, -400000.0, resp.CashFlows[0])
	require.Len(t, resp.Ledger, 11)
	require.IsType(t, float64(0), resp.IRR)
	require.IsType(t, float64(0), resp.LCOC)
}

func TestCalculate_InvalidInput(t *testing.T) {
	r := newTestRouter(t)
	inputs := referenceInputs()
	inputs["charger_count"] = 2
	w := doJSON(t, r, http.MethodPost, "/api/v1/calculate", map[string]any{"inputs": inputs})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &resp)
	require.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestCalculate_AssumptionOverride(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/calculate", map[string]any{
		"inputs": referenceInputs(),
		"assumptions": map[string]any{
			"charger_power_kw": 150,
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ledger []struct {
			EnergyKWh float64 `json:"energy_kwh"`
		} `json:"ledger"`
	}
	decode(t, w, &resp)
	// 150 kW * 16 h * 365 d * 0.5 util * 4 chargers
	require.InDelta(t, 150*16*365*0.5*4, resp.Ledger[1].EnergyKWh, 1e-6)
}

func TestProjects_CRUD(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects", map[string]any{
		"name":   "Downtown Site",
		"inputs": referenceInputs(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)
	require.NotEmpty(t, created.ID)

	w = doJSON(t, r, http.MethodGet, "/api/v1/projects/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/projects/"+created.ID, map[string]any{
		"name":   "Renamed Site",
		"inputs": referenceInputs(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Name string `json:"name"`
	}
	decode(t, w, &updated)
	require.Equal(t, "Renamed Site", updated.Name)

	w = doJSON(t, r, http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []json.RawMessage
	decode(t, w, &list)
	require.Len(t, list, 1)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/projects/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/projects/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjects_CreateRejectsInvalid(t *testing.T) {
	r := newTestRouter(t)
	inputs := referenceInputs()
	inputs["capex_per_charger"] = -5
	w := doJSON(t, r, http.MethodPost, "/api/v1/projects", map[string]any{
		"name":   "Bad",
		"inputs": inputs,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_Valuation(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects", map[string]any{
		"name":   "Site",
		"inputs": referenceInputs(),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodGet, "/api/v1/projects/"+created.ID+"/valuation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		CashFlows []float64 `json:"cash_flows"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.CashFlows, 11)
}

func uploadDocument(t *testing.T, r *gin.Engine, projectID, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/documents", projectID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDocuments_UploadAndList(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects", map[string]any{
		"name":   "Site",
		"inputs": referenceInputs(),
	})
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	csvDoc := "Item,Qty,Unit Price,Total,Category\nDC fast charger,4,95000,380000,capital\nAnnual maintenance,1,12000,12000,operating\n"
	w = uploadDocument(t, r, created.ID, "quote.csv", csvDoc)
	require.Equal(t, http.StatusCreated, w.Code)

	var doc struct {
		Items      []any `json:"items"`
		Comparison struct {
			ExtractedCapEx   float64 `json:"extracted_capex"`
			ModeledCapEx     float64 `json:"modeled_capex"`
			VarianceFraction float64 `json:"variance_fraction"`
		} `json:"comparison"`
	}
	decode(t, w, &doc)
	require.Len(t, doc.Items, 2)
	require.Equal(t, 380000.0, doc.Comparison.ExtractedCapEx)
	require.Equal(t, 400000.0, doc.Comparison.ModeledCapEx)
	require.InDelta(t, -0.05, doc.Comparison.VarianceFraction, 1e-9)

	w = doJSON(t, r, http.MethodGet, "/api/v1/projects/"+created.ID+"/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []json.RawMessage
	decode(t, w, &list)
	require.Len(t, list, 1)
}

func TestDocuments_UploadUnparseable(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/projects", map[string]any{
		"name":   "Site",
		"inputs": referenceInputs(),
	})
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	w = uploadDocument(t, r, created.ID, "notes.txt", "no prices here\n")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDocuments_UploadMissingProject(t *testing.T) {
	r := newTestRouter(t)
	w := uploadDocument(t, r, "no-such-id", "quote.txt", "Chargers $100\n")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSensitivity_RankedCells(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/sensitivity", map[string]any{
		"inputs":         referenceInputs(),
		"utilizations":   []float64{0.2, 0.6},
		"charging_rates": []float64{0.3, 0.5},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Cells []struct {
			Rank int     `json:"rank"`
			NPV  float64 `json:"npv"`
		} `json:"cells"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Cells, 4)
	require.Equal(t, 1, resp.Cells[0].Rank)
	for i := 1; i < len(resp.Cells); i++ {
		require.GreaterOrEqual(t, resp.Cells[i-1].NPV, resp.Cells[i].NPV)
	}
}

func TestAssumptions_Get(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/assumptions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ChargerPowerKW float64 `json:"charger_power_kw"`
		HoursPerDay    float64 `json:"hours_per_day"`
	}
	decode(t, w, &resp)
	require.Equal(t, 350.0, resp.ChargerPowerKW)
	require.Equal(t, 16.0, resp.HoursPerDay)
}
