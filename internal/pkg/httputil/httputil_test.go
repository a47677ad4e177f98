package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Title string  `json:"title"`
	Note  *string `json:"note"`
}

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"object", `{"title":"a"}`, nil},
		{"unknown fields ignored", `{"title":"a","extra":1}`, nil},
		{"empty", ``, ErrEmptyBody},
		{"whitespace", " \n\t", ErrEmptyBody},
		{"syntax error", `{"title":`, ErrMalformedJSON},
		{"trailing garbage", `{"title":"a"} x`, ErrMalformedJSON},
		{"array", `[1,2]`, ErrBodyShape},
		{"string", `"hello"`, ErrBodyShape},
		{"null", `null`, ErrBodyShape},
		{"wrong field type", `{"title":5}`, ErrBodyShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := DecodeObject([]byte(tt.body), &p)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, "a", p.Title)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEnvelopeJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, Success(map[string]string{"id": "1"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":"1"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "NOT_FOUND", "issue x not found")
	assert.JSONEq(t, `{"success":false,"error":{"message":"issue x not found","code":"NOT_FOUND"}}`, rec.Body.String())
}

func TestSuccessWithoutData(t *testing.T) {
	b, err := json.Marshal(Success(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(b))
}
