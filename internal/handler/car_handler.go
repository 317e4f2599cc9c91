package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Dan9191/car-service/internal/apperr"
	"github.com/Dan9191/car-service/internal/assets"
	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/service"
)

const (
	// maxUploadBytes bounds a multipart request: every image at full size plus room for the text fields.
	maxUploadBytes  = assets.MaxFiles*assets.MaxFileSize + 1<<20
	multipartMemory = 8 << 20
)

type carResponse struct {
	*models.Car
	ImageURLs []string `json:"image_urls"`
}

func (h *Handler) carResponse(car *models.Car) carResponse {
	return carResponse{Car: car, ImageURLs: h.cars.ImageURLs(car.Images)}
}

// tagList accepts tags either as a comma-separated string or as an array of strings
type tagList string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = tagList(strings.Join(list, ","))
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = tagList(raw)
	return nil
}

type carRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        *tagList `json:"tags"`
}

// CreateCar handles listing creation
func (h *Handler) CreateCar(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	in, cleanup, err := readCarInput(w, r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	defer cleanup()

	car, err := h.cars.Create(r.Context(), userID, in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.carResponse(car))
}

// ListCars returns the caller's cars, optionally filtered by ?search=
func (h *Handler) ListCars(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	cars, err := h.cars.List(r.Context(), userID, r.URL.Query().Get("search"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	resp := make([]carResponse, 0, len(cars))
	for _, car := range cars {
		resp = append(resp, h.carResponse(car))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCar returns one of the caller's cars
func (h *Handler) GetCar(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	car, err := h.cars.Get(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.carResponse(car))
}

// UpdateCar changes the supplied fields of one of the caller's cars
func (h *Handler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	in, cleanup, err := readCarInput(w, r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	defer cleanup()

	car, err := h.cars.Update(r.Context(), userID, mux.Vars(r)["id"], in)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.carResponse(car))
}

// DeleteCar removes one of the caller's cars and returns it
func (h *Handler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	car, err := h.cars.Delete(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.carResponse(car))
}

// readCarInput extracts car fields from a multipart form or a JSON body.
// The returned cleanup removes any temporary files the form spilled to disk.
func readCarInput(w http.ResponseWriter, r *http.Request) (service.CarInput, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req carRequest
		if err := decodeJSON(r, &req); err != nil {
			return service.CarInput{}, noop, err
		}
		return service.CarInput{
			Title:       req.Title,
			Description: req.Description,
			Tags:        (*string)(req.Tags),
		}, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.CarInput{}, noop, apperr.Validation("request body too large")
		}
		return service.CarInput{}, noop, apperr.Validation("invalid multipart form")
	}
	form := r.MultipartForm
	cleanup := func() { _ = form.RemoveAll() }

	return service.CarInput{
		Title:       formValue(form.Value, "title"),
		Description: formValue(form.Value, "description"),
		Tags:        formValue(form.Value, "tags"),
		Images:      form.File["images"],
	}, cleanup, nil
}

func formValue(values map[string][]string, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	return &v[0]
}
