package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
)

func run(t *testing.T, h Handler, r *http.Request) (int, phttp.Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, r)
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestCall(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		out  any
		err  error
		want int
	}{
		{"plain value is 200", map[string]int{"total": 3}, nil, http.StatusOK},
		{"response passes through", Created(map[string]string{"jobId": "j1"}), nil, http.StatusCreated},
		{"coded error", nil, perr.NotFoundf("import job %q not found", "j9"), http.StatusNotFound},
		{"foreign error", nil, errors.New("nah"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := Call(func(*http.Request) (any, error) { return tc.out, tc.err })
			code, env := run(t, h, httptest.NewRequest("GET", "/", nil))
			if code != tc.want || env.StatusCode != tc.want {
				t.Fatalf("status = %d/%d, want %d", code, env.StatusCode, tc.want)
			}
			if (tc.err != nil) != (env.Error != "") {
				t.Fatalf("envelope = %+v", env)
			}
		})
	}
}

type beginIn struct {
	FileName string `json:"filename" validate:"required"`
}

func TestJSON(t *testing.T) {
	t.Parallel()

	h := JSON(func(_ *http.Request, in beginIn) (any, error) {
		return Created(map[string]string{"file": in.FileName}), nil
	})

	cases := []struct {
		name string
		body string
		want int
	}{
		{"decoded", `{"filename":"a.xlsx"}`, http.StatusCreated},
		{"malformed", `{`, http.StatusBadRequest},
		{"unknown field", `{"filename":"a.xlsx","b":2}`, http.StatusBadRequest},
		{"failed rule", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			code, env := run(t, h, httptest.NewRequest("POST", "/begin", strings.NewReader(tc.body)))
			if code != tc.want {
				t.Fatalf("status = %d, want %d (%+v)", code, tc.want, env)
			}
		})
	}
}

func TestJSON_OptionsReachTheBinder(t *testing.T) {
	t.Parallel()

	called := false
	h := JSON(func(*http.Request, beginIn) (any, error) { called = true; return nil, nil }, JSONOptions{MaxBytes: 4})
	code, env := run(t, h, httptest.NewRequest("POST", "/", strings.NewReader(`{"filename":"a.xlsx"}`)))
	if code != http.StatusRequestEntityTooLarge || env.Code != perr.ErrorCodeTooLarge || called {
		t.Fatalf("status = %d env = %+v called = %v", code, env, called)
	}
}

func TestJSON_HandlerError(t *testing.T) {
	t.Parallel()

	h := JSON(func(*http.Request, beginIn) (any, error) { return nil, perr.InvalidArgf("rowsDetected must be >= 0") })
	code, env := run(t, h, httptest.NewRequest("POST", "/", strings.NewReader(`{"filename":"a.xlsx"}`)))
	if code != http.StatusUnprocessableEntity || env.Error != "rowsDetected must be >= 0" {
		t.Fatalf("status = %d env = %+v", code, env)
	}
}

func TestDecodeAndParam(t *testing.T) {
	t.Parallel()

	in, err := Decode[beginIn](httptest.NewRequest("POST", "/", strings.NewReader(`{"filename":"b.csv"}`)))
	if err != nil || in.FileName != "b.csv" {
		t.Fatalf("Decode = %+v %v", in, err)
	}

	var got string
	r := phttp.AdaptChi(chi.NewRouter())
	r.Get("/imports/{id}/log", func(_ http.ResponseWriter, req *http.Request) { got = Param(req, "id") })
	r.Mux().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/imports/j-7/log", nil))
	if got != "j-7" {
		t.Fatalf("Param = %q", got)
	}
}
