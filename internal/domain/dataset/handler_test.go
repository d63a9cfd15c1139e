package dataset

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

const recordsCSV = `PatientID,Codes,ResourceType
p1,M87.24,Condition
p1,I41.1,Condition
p1,9-694.t,Procedure
p2,M87.24,Condition
p2,U35.1,Condition
`

func uploadRaw(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.UploadDataset(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestUploadDataset(t *testing.T) {
	h := NewHandler(testService(nil))

	rec := uploadRaw(t, h, recordsCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID       string          `json:"id"`
		Records  int             `json:"records"`
		Codes    int             `json:"codes"`
		Catalogs map[string]bool `json:"catalogs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Records != 5 || resp.Codes != 4 {
		t.Errorf("expected 5 records and 4 codes, got %d and %d", resp.Records, resp.Codes)
	}
	if resp.Catalogs["ICD"] {
		t.Error("expected ICD catalog unavailable in bare test service")
	}
}

func TestUploadDataset_Multipart(t *testing.T) {
	h := NewHandler(testService(nil))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "records.csv")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(recordsCSV))
	mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.UploadDataset(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadDataset_MissingColumns(t *testing.T) {
	h := NewHandler(testService(nil))

	rec := uploadRaw(t, h, "PatientID,Other\np1,x\n")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Codes") || !strings.Contains(rec.Body.String(), "ResourceType") {
		t.Errorf("expected missing column names in response, got %s", rec.Body.String())
	}
}

func TestUploadDataset_Empty(t *testing.T) {
	h := NewHandler(testService(nil))

	rec := uploadRaw(t, h, "PatientID,Codes,ResourceType\n")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty dataset, got %d", rec.Code)
	}
}

func TestListCodes(t *testing.T) {
	svc := testService(nil)
	h := NewHandler(svc)
	rec := uploadRaw(t, h, recordsCSV)

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	listRec := httptest.NewRecorder()
	c := e.NewContext(req, listRec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	if err := h.ListCodes(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Codes []struct {
			Code    string `json:"code"`
			Display string `json:"display"`
		} `json:"codes"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Codes) != 4 {
		t.Errorf("expected 4 codes, got %d", len(resp.Codes))
	}
}

func TestListCodes_UnknownDataset(t *testing.T) {
	h := NewHandler(testService(nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("00000000-0000-0000-0000-000000000001")

	err := h.ListCodes(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestListCodes_InvalidID(t *testing.T) {
	h := NewHandler(testService(nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.ListCodes(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
