// Package integration exercises the full request path: CSV upload through
// ingestion, then every analysis endpoint over the resulting snapshot. It
// runs entirely in-process against the in-memory catalog repository, the
// same configuration the server falls back to without a database.
package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/coco/coco/internal/domain/analysis"
	"github.com/coco/coco/internal/domain/catalog"
	"github.com/coco/coco/internal/domain/codes"
	"github.com/coco/coco/internal/domain/dataset"
	"github.com/coco/coco/internal/platform/middleware"
)

const recordsCSV = `PatientID,Codes,ResourceType
p1,M87.24,Condition
p1,I41.1,Condition
p1,9-694.t,Procedure
p2,M87.24,Condition
p2,U35.1,Condition
`

// newApp assembles the echo application the way cmd/coco-server does,
// minus auth, over an in-memory catalog seeded with a minimal ICD table.
func newApp(t *testing.T) *echo.Echo {
	t.Helper()
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)

	repo := catalog.NewMemoryRepository()
	repo.Load(codes.ICD, []*catalog.Entry{
		{Code: "M87.24", Display: "Knochennekrose", ChapterCode: "XIII", ChapterName: "Muskel-Skelett", GroupCode: "M86-M90", GroupName: "Osteopathien"},
		{Code: "I41.1", Display: "Myokarditis", ChapterCode: "IX", ChapterName: "Kreislauf", GroupCode: "I30-I52", GroupName: "Herzkrankheit"},
		{Code: "U35.1", Display: "Impfstatus", ChapterCode: "XXII", ChapterName: "Besondere Zwecke", GroupCode: "U35-U49", GroupName: "Belegung"},
	})

	catalogSvc := catalog.NewService(repo, logger)
	datasetSvc := dataset.NewService(catalogSvc, dataset.NewMemoryStore(), logger)
	analysisSvc := analysis.NewService(logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("1M"))

	api := e.Group("/api/v1")
	dataset.NewHandler(datasetSvc).RegisterRoutes(api)
	analysis.NewHandler(datasetSvc, analysisSvc, 10, 5).RegisterRoutes(api)
	return e
}

func do(e *echo.Echo, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := do(e, http.MethodPost, "/api/v1/datasets", "text/csv", recordsCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("upload response: %v", err)
	}
	return resp.ID
}

func TestUploadThenGraph(t *testing.T) {
	e := newApp(t)
	id := upload(t, e)

	rec := do(e, http.MethodGet, "/api/v1/datasets/"+id+"/graph?level=4&top=10", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("graph: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var g analysis.Graph
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("graph response: %v", err)
	}
	if g.Empty() {
		t.Fatal("expected a populated graph")
	}

	// The ICD catalog is loaded, so the ICD leaves hang off a full
	// chapter/group chain and carry display names.
	byID := make(map[string]analysis.Node)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	if n, ok := byID["M87.24"]; !ok || n.Display != "Knochennekrose" {
		t.Errorf("expected catalog display for M87.24, got %+v", n)
	}
	if _, ok := byID["M86-M90"]; !ok {
		t.Error("expected the M86-M90 group node")
	}
	// The OPS code has no catalog and appears through its pair edge only.
	if n, ok := byID["9-694.t"]; !ok || n.Display != "9-694.t" {
		t.Errorf("expected raw-code display for 9-694.t, got %+v", n)
	}
}

func TestUploadThenNeighborhood(t *testing.T) {
	e := newApp(t)
	id := upload(t, e)

	rec := do(e, http.MethodGet, "/api/v1/datasets/"+id+"/neighborhood/M87.24", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("neighborhood: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res analysis.NeighborhoodResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("neighborhood response: %v", err)
	}
	if res.TopNeighbors[codes.OPS] != "9-694.t" {
		t.Errorf("OPS top neighbor = %q, want 9-694.t", res.TopNeighbors[codes.OPS])
	}
	if len(res.Frequencies) == 0 {
		t.Error("expected frequencies for the codes of interest")
	}
}

func TestUploadThenFrequencyAndSubMatrix(t *testing.T) {
	e := newApp(t)
	id := upload(t, e)

	rec := do(e, http.MethodGet, "/api/v1/datasets/"+id+"/frequency?codes=M87.24,I41.1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("frequency: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/v1/datasets/"+id+"/submatrix?codes=M87.24,I41.1,U35.1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submatrix: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Codes []string `json:"codes"`
		Cells [][]int  `json:"cells"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("submatrix response: %v", err)
	}
	if len(resp.Codes) != 3 {
		t.Fatalf("expected 3 codes, got %v", resp.Codes)
	}
}

func TestUploadRejectsOversizeBody(t *testing.T) {
	e := newApp(t)

	big := recordsCSV + strings.Repeat("p9,Z99.9,Condition\n", 1<<16)
	rec := do(e, http.MethodPost, "/api/v1/datasets", "text/csv", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversize upload, got %d", rec.Code)
	}
}

func TestUnknownDatasetIs404(t *testing.T) {
	e := newApp(t)

	rec := do(e, http.MethodGet, "/api/v1/datasets/6a6f6e61-7468-4e00-8000-000000000000/graph", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
