package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
)

type stayBody struct {
	CheckIn  string `json:"check_in" validate:"required,isodate"`
	Rate     string `json:"rate" validate:"required,money"`
	Status   string `json:"status" validate:"omitempty,roomstatus"`
	TaskType string `json:"type" validate:"omitempty,tasktype"`
}

func TestDecodeJSONBodyCustomTags(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"check_in":"2024-01-10","rate":"100.50","status":"Em Limpeza","type":"clean"}`))
	var body stayBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "2024-01-10", body.CheckIn)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"check_in":"10/01/2024","rate":"-1","type":"sweep"}`))
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a date formatted YYYY-MM-DD", details["check_in"])
	assert.Equal(t, "must be a non-negative decimal amount", details["rate"])
	assert.Contains(t, details, "type")
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"check_in":"2024-01-10","rate":"1","extra":true}`))
	var body stayBody
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseIDParam(t *testing.T) {
	build := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("id", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	id, err := ParseIDParam(build("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseIDParam(build(bad), "id")
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), bad)
	}
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&cursor=abc", nil)
	params, err := ParsePage(req)
	require.NoError(t, err)
	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, "abc", params.Cursor)

	_, err = ParsePage(httptest.NewRequest(http.MethodGet, "/?limit=0", nil))
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Ana Maria", SanitizeString("  Ana \t\n Maria ", 0))
	assert.Equal(t, "Jo\u00e3o", SanitizeString("Joa\u0303o", 10), "decomposed input is recomposed")
	assert.Equal(t, "Conce", SanitizeString("Conceição", 5))
	assert.Equal(t, "São", SanitizeString("São Paulo", 4), "cut counts runes, not bytes")
}
