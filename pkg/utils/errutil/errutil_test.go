package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", goerr.Wrap(model.ErrValidation, "bad"), http.StatusBadRequest},
		{"unauthenticated", goerr.Wrap(model.ErrUnauthenticated, "who"), http.StatusUnauthorized},
		{"not found", goerr.Wrap(model.ErrNotFound, "gone"), http.StatusNotFound},
		{"conflict wrapped twice", goerr.Wrap(goerr.Wrap(model.ErrConflict, "busy"), "outer"), http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, errutil.StatusCode(tt.err)).Equal(tt.want)
		})
	}
}

func TestHandleWithoutSentry(t *testing.T) {
	// must not panic without a configured client
	errutil.Handle(context.Background(), errors.New("boom"), "test")
	errutil.Handle(context.Background(), nil, "test")
}
