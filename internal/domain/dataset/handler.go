package dataset

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/datasets", h.UploadDataset)
	api.GET("/datasets", h.ListDatasets)
	api.GET("/datasets/:id/codes", h.ListCodes)
}

// uploadResponse reports what the ingestion produced, including which code
// systems had a catalog available when the hierarchy was built.
type uploadResponse struct {
	ID       uuid.UUID       `json:"id"`
	Records  int             `json:"records"`
	Codes    int             `json:"codes"`
	Catalogs map[string]bool `json:"catalogs"`
}

// UploadDataset ingests a records CSV, either as the "file" part of a
// multipart form or as the raw request body.
func (h *Handler) UploadDataset(c echo.Context) error {
	body, err := uploadBody(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer body.Close()

	records, err := ReadRecordsCSV(body)
	if err != nil {
		var missing *MissingColumnsError
		if errors.As(err, &missing) {
			return echo.NewHTTPError(http.StatusBadRequest, missing.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid CSV: "+err.Error())
	}

	snap, err := h.svc.Ingest(c.Request().Context(), records)
	if err != nil {
		if errors.Is(err, ErrNoRecords) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	catalogs := make(map[string]bool, len(snap.Catalogs))
	for system, ok := range snap.Catalogs {
		catalogs[string(system)] = ok
	}
	return c.JSON(http.StatusCreated, uploadResponse{
		ID:       snap.ID,
		Records:  len(snap.Records),
		Codes:    snap.Main.Len(),
		Catalogs: catalogs,
	})
}

func (h *Handler) ListDatasets(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]uuid.UUID{"datasets": h.svc.IDs()})
}

// ListCodes returns the dataset's distinct codes with display labels, in
// matrix column order.
func (h *Handler) ListCodes(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	snap, err := h.svc.Get(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "dataset not found")
	}

	type codeEntry struct {
		Code    string `json:"code"`
		Display string `json:"display"`
	}
	out := make([]codeEntry, 0, snap.Main.Len())
	for _, code := range snap.Main.Codes {
		out = append(out, codeEntry{Code: code, Display: snap.Display(code)})
	}
	return c.JSON(http.StatusOK, map[string]any{"codes": out})
}

func uploadBody(c echo.Context) (io.ReadCloser, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		// Not a multipart upload; take the body as the CSV itself.
		return io.NopCloser(c.Request().Body), nil
	}
	return fh.Open()
}
