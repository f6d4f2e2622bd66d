package handler

import (
	"errors"
	nethttp "net/http"

	"CityCard/modules/kit/errx"
)

func toHTTPStatus(err error) int {
	switch {
	case errors.Is(err, errx.ErrNotFound):
		return nethttp.StatusNotFound
	case errors.Is(err, errx.ErrInvalidSetup):
		return nethttp.StatusBadRequest
	case errors.Is(err, errx.ErrTimeout):
		return nethttp.StatusGatewayTimeout
	case errors.Is(err, errx.ErrUnavailable):
		return nethttp.StatusServiceUnavailable
	default:
		return nethttp.StatusInternalServerError
	}
}

func errorBody(err error) map[string]any {
	var xe *errx.Error
	if errors.As(err, &xe) {
		return map[string]any{"code": xe.CodeText(), "message": xe.Msg()}
	}
	return map[string]any{"code": string(errx.CodeInternal), "message": err.Error()}
}
