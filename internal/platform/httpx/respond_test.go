package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProblemDerivesTypeFromTitle(t *testing.T) {
	rec := httptest.NewRecorder()
	Problem(rec, http.StatusNotFound, "Bill Not Found", "no bill with id 9")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "/problems/bill-not-found", body.Type)
	require.Equal(t, "Bill Not Found", body.Title)
	require.Equal(t, http.StatusNotFound, body.Status)
	require.Equal(t, "no bill with id 9", body.Detail)
}

func TestProblemType(t *testing.T) {
	require.Equal(t, "/problems/validation-failed", ProblemType("Validation Failed"))
	require.Equal(t, "/problems/conflict", ProblemType("  Conflict "))
	require.Equal(t, "", ProblemType(""))
}
