package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:      http.StatusNotFound,
		KindValidation:    http.StatusBadRequest,
		KindConflict:      http.StatusConflict,
		KindForbidden:     http.StatusForbidden,
		KindUnauthorized:  http.StatusUnauthorized,
		KindUnprocessable: http.StatusUnprocessableEntity,
		KindUpstream:      http.StatusBadGateway,
		KindUnavailable:   http.StatusServiceUnavailable,
		KindInternal:      http.StatusInternalServerError,
		KindUnknown:       http.StatusBadRequest,
	}
	for kind, want := range cases {
		assert.Equal(t, want, New(kind, "x").HTTPStatus())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("pg: connection reset")
	err := fmt.Errorf("load: %w", Wrap(KindUpstream, "store failed", cause).WithOp("pipeline.refresh"))

	assert.True(t, Is(err, KindUpstream))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load: pipeline.refresh: store failed", err.Error())
	assert.Equal(t, KindUnknown, GetKind(cause))
}
