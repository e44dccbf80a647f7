package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/raildelay/raildelay/internal/api/models"
	"github.com/raildelay/raildelay/internal/api/response"
	"github.com/raildelay/raildelay/internal/classifier"
	"github.com/raildelay/raildelay/internal/features"
	"github.com/raildelay/raildelay/internal/prediction"
	"github.com/raildelay/raildelay/internal/provider/resilience"
)

// maxRequestBody bounds a prediction request body.
const maxRequestBody = 64 << 10

// circuitRetryAfter is the Retry-After hint, in seconds, sent while the
// classifier circuit is open. It matches the breaker's open timeout.
const circuitRetryAfter = 30

// Predictor runs the delay prediction pipeline. *prediction.Service
// satisfies it.
type Predictor interface {
	Predict(ctx context.Context, in features.RawInput) (*prediction.Prediction, error)
	DefaultTrainNumber(trainType string) (int, error)
}

// PredictionHandler handles prediction endpoints.
type PredictionHandler struct {
	predictor Predictor
	validate  *validator.Validate
	now       func() time.Time
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictor Predictor) *PredictionHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	return &PredictionHandler{
		predictor: predictor,
		validate:  v,
		now:       time.Now,
	}
}

// CreatePrediction handles POST /v1/predictions - predict the delay of one
// train at one stop.
func (h *PredictionHandler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.BadRequest(w, r, "request validation failed", fieldErrors(verrs))
			return
		}
		response.BadRequest(w, r, "request validation failed", nil)
		return
	}

	in, err := prediction.Resolve(prediction.Request{
		TrainType:   req.TrainType,
		TrainNumber: req.TrainNumber,
		StationCode: req.StationCode,
		Platform:    req.Platform,
		ArrivalDate: req.ArrivalDate,
		ArrivalTime: req.ArrivalTime,
	}, h.predictor, h.now())
	if err != nil {
		h.writePredictError(w, r, err)
		return
	}

	pred, err := h.predictor.Predict(r.Context(), in)
	if err != nil {
		h.writePredictError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toPredictionResponse(pred))
}

func (h *PredictionHandler) writePredictError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr *features.ValidationError
		invErr *classifier.InvocationError
	)
	switch {
	case errors.As(err, &valErr):
		code := models.FieldCodeUnknown
		if errors.Is(err, prediction.ErrMalformedInput) {
			code = models.FieldCodeInvalid
		}
		response.BadRequest(w, r, valErr.Error(), []models.FieldError{{
			Field:   valErr.Field,
			Message: valErr.Reason,
			Code:    code,
		}})
	case errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "delay classifier is temporarily unavailable", circuitRetryAfter)
	case errors.As(err, &invErr):
		response.ClassifierError(w, r, "delay classifier failed to produce a prediction")
	default:
		response.InternalError(w, r, "failed to predict delay")
	}
}

func toPredictionResponse(pred *prediction.Prediction) models.PredictionResponse {
	rows := pred.Result.Breakdown()
	probs := make([]models.ClassProbability, 0, len(rows))
	for _, row := range rows {
		probs = append(probs, models.ClassProbability{
			Category:    row.Class.String(),
			Label:       row.Label,
			Probability: row.Probability,
		})
	}

	cols := features.Columns()
	values := pred.Features.Values()
	echo := make(map[string]any, len(cols))
	for i, col := range cols {
		echo[col] = values[i]
	}

	return models.PredictionResponse{
		ExpectedDelayMinutes: pred.Result.DisplayDelay(),
		Category:             pred.Result.Class.String(),
		CategoryLabel:        pred.Result.Class.Label(),
		MostLikelyCategory:   pred.MostLikely.String(),
		Probabilities:        probs,
		Features:             echo,
	}
}

func fieldErrors(verrs validator.ValidationErrors) []models.FieldError {
	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		code := models.FieldCodeInvalid
		msg := fe.Field() + " is invalid"
		switch fe.Tag() {
		case "required":
			code = models.FieldCodeRequired
			msg = fe.Field() + " is required"
		case "max":
			msg = fe.Field() + " must be at most " + fe.Param() + " characters"
		case "gt":
			msg = fe.Field() + " must be greater than " + fe.Param()
		}
		out = append(out, models.FieldError{Field: fe.Field(), Message: msg, Code: code})
	}
	return out
}

// jsonFieldName reports validation errors under the request's JSON names.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

var _ Predictor = (*prediction.Service)(nil)
