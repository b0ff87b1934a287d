package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shortageErr struct{}

func (shortageErr) Error() string        { return "not enough stock" }
func (shortageErr) ProblemStatus() int   { return http.StatusUnprocessableEntity }
func (shortageErr) ProblemTitle() string { return "Insufficient Stock" }
func (shortageErr) ProblemExtensions() map[string]any {
	return map[string]any{"shortfalls": []string{"p-1"}}
}

func TestRespondErrorProblemer(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("invoice: %w", shortageErr{}))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient Stock", body["title"])
	assert.Contains(t, body, "shortfalls")
	assert.Equal(t, "invoice: not enough stock", body["detail"])
}

func TestRespondErrorSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("sale: %w", ErrNotFound), http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.code, rr.Code, tc.err.Error())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1,"b":2}`))
	var target struct {
		A int `json:"a"`
	}
	err := DecodeJSON(req, &target)
	require.ErrorIs(t, err, ErrValidation)
}
