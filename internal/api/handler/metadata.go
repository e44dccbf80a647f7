package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/raildelay/raildelay/internal/api/models"
	"github.com/raildelay/raildelay/internal/api/response"
	"github.com/raildelay/raildelay/internal/refdata"
)

// MetadataHandler serves the reference data a client needs to build a
// prediction request.
type MetadataHandler struct {
	ref *refdata.Data
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(ref *refdata.Data) *MetadataHandler {
	return &MetadataHandler{ref: ref}
}

// ListTrainTypes handles GET /v1/metadata/train-types.
func (h *MetadataHandler) ListTrainTypes(w http.ResponseWriter, r *http.Request) {
	types := h.ref.TrainTypes()
	list := models.TrainTypeList{Items: make([]models.TrainType, 0, len(types))}
	for _, t := range types {
		list.Items = append(list.Items, models.TrainType{
			Name:          t.Name,
			Company:       t.Company,
			Numbers:       t.Numbers,
			DefaultNumber: t.DefaultNumber(),
		})
	}
	response.JSON(w, r, http.StatusOK, list)
}

// ListStations handles GET /v1/metadata/stations.
func (h *MetadataHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations := h.ref.Stations()
	list := models.StationList{Items: make([]models.Station, 0, len(stations))}
	for _, s := range stations {
		list.Items = append(list.Items, models.Station{Code: s.Code, Name: s.Name})
	}
	response.JSON(w, r, http.StatusOK, list)
}

// ListPlatforms handles GET /v1/metadata/platforms.
func (h *MetadataHandler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms := h.ref.Platforms()
	list := models.PlatformList{Items: make([]string, 0, len(platforms))}
	for _, p := range platforms {
		list.Items = append(list.Items, string(p))
	}
	response.JSON(w, r, http.StatusOK, list)
}

// ListDelayClasses handles GET /v1/metadata/delay-classes.
func (h *MetadataHandler) ListDelayClasses(w http.ResponseWriter, r *http.Request) {
	list := models.DelayClassList{Items: make([]models.DelayClass, 0, refdata.NumClasses)}
	for _, c := range refdata.Classes {
		list.Items = append(list.Items, models.DelayClass{
			Code:                  c.String(),
			Label:                 c.Label(),
			RepresentativeMinutes: c.RepresentativeMinutes(),
		})
	}
	response.JSON(w, r, http.StatusOK, list)
}

// GetDefaultTrainNumber handles GET /v1/metadata/train-types/{name}/default-number.
func (h *MetadataHandler) GetDefaultTrainNumber(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the request carries one, leaving the
	// parameter escaped.
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	number, err := h.ref.DefaultTrainNumber(name)
	if errors.Is(err, refdata.ErrUnknownTrainType) {
		response.NotFound(w, r, "unknown train type: "+name)
		return
	}
	if err != nil {
		response.InternalError(w, r, "failed to resolve default train number")
		return
	}

	response.JSON(w, r, http.StatusOK, models.DefaultTrainNumber{
		TrainType:   name,
		TrainNumber: number,
	})
}
