package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"gift_autobuy/pkg/contextx"
)

func TestOwnersOnlyStoresUserID(t *testing.T) {
	testCases := []struct {
		name         string
		path         string
		expectStatus int
		expectUserID contextx.UserID
	}{
		{name: "owner", path: "/users/42", expectStatus: http.StatusOK, expectUserID: 42},
		{name: "not an owner", path: "/users/43", expectStatus: http.StatusNotFound},
		{name: "malformed id", path: "/users/abc", expectStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			var got contextx.UserID

			s := NewServer(ConfigServer{}, WorkerServer{}, 42)

			r := chi.NewRouter()
			r.Route("/users/{userID}", func(r chi.Router) {
				r.Use(s.ownersOnly)
				r.Get("/", func(w http.ResponseWriter, r *http.Request) {
					userID, err := requestUserID(r)
					rq.NoError(err)

					got = contextx.UserID(userID)

					w.WriteHeader(http.StatusOK)
				})
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path+"/", nil))

			rq.Equal(tc.expectStatus, rec.Code)
			rq.Equal(tc.expectUserID, got)
		})
	}
}

func TestRequestUserIDWithoutOwner(t *testing.T) {
	rq := require.New(t)

	_, err := requestUserID(httptest.NewRequest(http.MethodGet, "/", nil))
	rq.ErrorIs(err, contextx.ErrNoValue)
}
