package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerID = "507f1f77bcf86cd799439011"

func newRouter(tm *utils.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(Logger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	protected := r.PathPrefix("/users/{userId}").Subrouter()
	protected.Use(Authenticate(tm), AuthorizeOwner)
	protected.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, claims.UserID)
	})
	return r
}

func TestAuth(t *testing.T) {
	tm := utils.NewTokenManager([]byte("secret"), time.Minute)
	token, err := tm.GenerateJWT(ownerID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"owner", "/users/" + ownerID + "/cart", "Bearer " + token, http.StatusOK},
		{"missing header", "/users/" + ownerID + "/cart", "", http.StatusUnauthorized},
		{"wrong scheme", "/users/" + ownerID + "/cart", "Token " + token, http.StatusUnauthorized},
		{"bad token", "/users/" + ownerID + "/cart", "Bearer nope", http.StatusUnauthorized},
		{"other user", "/users/507f191e810c19729de860ea/cart", "Bearer " + token, http.StatusForbidden},
		{"malformed id", "/users/abc/cart", "Bearer " + token, http.StatusBadRequest},
	}
	router := newRouter(tm)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			if tt.want == http.StatusOK {
				assert.Equal(t, ownerID, rec.Body.String())
			}
		})
	}
}

func TestLogger_KeepsIncomingRequestID(t *testing.T) {
	router := newRouter(utils.NewTokenManager([]byte("secret"), time.Minute))
	req := httptest.NewRequest(http.MethodGet, "/users/"+ownerID+"/cart", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestRecoverer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := mux.NewRouter()
	r.Use(Logger(logger), Recoverer(logger))
	r.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)
}
