package analysis

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/coco/coco/internal/domain/cooccurrence"
	"github.com/coco/coco/internal/domain/dataset"
)

type Handler struct {
	datasets *dataset.Service
	svc      *Service

	defaultTop       int
	defaultNeighbors int
}

func NewHandler(datasets *dataset.Service, svc *Service, defaultTop, defaultNeighbors int) *Handler {
	return &Handler{
		datasets:         datasets,
		svc:              svc,
		defaultTop:       defaultTop,
		defaultNeighbors: defaultNeighbors,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/datasets/:id/graph", h.GetGraph)
	api.GET("/datasets/:id/neighborhood/:code", h.GetNeighborhood)
	api.GET("/datasets/:id/frequency", h.GetFrequency)
	api.GET("/datasets/:id/submatrix", h.GetSubMatrix)
}

func (h *Handler) GetGraph(c echo.Context) error {
	snap, err := h.snapshot(c)
	if err != nil {
		return err
	}
	level, err := intQuery(c, "level", 0)
	if err != nil {
		return err
	}
	top, err := intQuery(c, "top", h.defaultTop)
	if err != nil {
		return err
	}
	g, err := h.svc.AggregatedGraph(snap, level, top)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) GetNeighborhood(c echo.Context) error {
	snap, err := h.snapshot(c)
	if err != nil {
		return err
	}
	neighbors, err := intQuery(c, "neighbors", h.defaultNeighbors)
	if err != nil {
		return err
	}
	res, err := h.svc.Neighborhood(snap, c.Param("code"), neighbors)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetFrequency(c echo.Context) error {
	snap, err := h.snapshot(c)
	if err != nil {
		return err
	}
	requested := splitCodes(c.QueryParam("codes"))
	if len(requested) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "codes parameter is required")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"frequencies": snap.Main.Frequencies(requested),
	})
}

func (h *Handler) GetSubMatrix(c echo.Context) error {
	snap, err := h.snapshot(c)
	if err != nil {
		return err
	}
	requested := splitCodes(c.QueryParam("codes"))
	sub, err := snap.Main.SubMatrix(requested)
	if err != nil {
		if errors.Is(err, cooccurrence.ErrTooFewCodes) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"codes": sub.Codes,
		"cells": sub.Cells(),
	})
}

func (h *Handler) snapshot(c echo.Context) (*dataset.Snapshot, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	snap, err := h.datasets.Get(id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "dataset not found")
	}
	return snap, nil
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" parameter")
	}
	return v, nil
}

func splitCodes(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
