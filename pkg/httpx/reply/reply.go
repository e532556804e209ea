package reply

import (
	"context"
	"errors"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	jsoniter "github.com/json-iterator/go"

	"gift_autobuy/pkg/contextx"
	"gift_autobuy/pkg/errcodes"
	"gift_autobuy/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SupportID string `json:"supportId"`
}

func (e *errorResponse) WithDefaultCode(code failure.ErrorCode) {
	if e.Code == "" {
		e.Code = code.String()
	}
}

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// codedError доменная ошибка с кодом из errcodes.
type codedError interface {
	error
	ErrorCode() failure.ErrorCode
}

// statusByCode HTTP статусы доменных кодов ошибок.
//
//nolint:gochecknoglobals
var statusByCode = map[failure.ErrorCode]int{
	errcodes.NotFound:             http.StatusNotFound,
	errcodes.ProfileNotFound:      http.StatusNotFound,
	errcodes.InvalidUserID:        http.StatusBadRequest,
	errcodes.InvalidProfileIndex:  http.StatusBadRequest,
	errcodes.ValidationError:      http.StatusBadRequest,
	errcodes.ProfilesLimitReached: http.StatusConflict,
	errcodes.WorkerAlreadyRunning: http.StatusConflict,
	errcodes.UserbotUnavailable:   http.StatusServiceUnavailable,
	errcodes.Forbidden:            http.StatusForbidden,
	errcodes.TimeoutExceeded:      http.StatusGatewayTimeout,
}

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func Created(w http.ResponseWriter) {
	w.WriteHeader(http.StatusCreated)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

func Error(ctx context.Context, w http.ResponseWriter, err error) {
	logger(ctx).Error("error", logx.Error(err))

	var coded codedError
	if errors.As(err, &coded) {
		if status, ok := statusByCode[coded.ErrorCode()]; ok {
			JSON(ctx, w, status, errorResponse{
				Code:      coded.ErrorCode().String(),
				Message:   coded.Error(),
				SupportID: supportID(ctx),
			})

			return
		}
	}

	response := errorResponse{
		Code:      failure.Code(err).String(),
		Message:   failure.Description(err),
		SupportID: supportID(ctx),
	}

	switch {
	case failure.IsInvalidArgumentError(err):
		response.WithDefaultCode(errcodes.ValidationError)
		JSON(ctx, w, http.StatusBadRequest, response)
	case failure.IsNotFoundError(err):
		response.WithDefaultCode(errcodes.NotFound)
		JSON(ctx, w, http.StatusNotFound, response)
	case failure.IsUnauthorizedError(err):
		JSON(ctx, w, http.StatusUnauthorized, response)
	case failure.IsForbiddenError(err):
		response.WithDefaultCode(errcodes.Forbidden)
		JSON(ctx, w, http.StatusForbidden, response)
	case failure.IsConflictError(err):
		JSON(ctx, w, http.StatusConflict, response)
	case failure.IsUnprocessableEntityError(err):
		JSON(ctx, w, http.StatusUnprocessableEntity, response)
	default:
		response.WithDefaultCode(errcodes.InternalServerError)
		JSON(ctx, w, http.StatusInternalServerError, response)
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
