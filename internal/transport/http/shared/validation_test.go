package shared

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("period", "  ", "is required")
	v.Amount("grossSalary", -1)
	v.Amount("otherDeductions", math.Inf(1))
	v.MaxLength("method", "carrier-pigeon-express", 8)
	v.Amount("ok", 12.5)

	require.True(t, v.HasIssues())
	issues := v.Issues()
	require.Len(t, issues, 4)
	require.Equal(t, "grossSalary", issues[0].Field)
	require.Equal(t, "method", issues[1].Field)
	require.Equal(t, "otherDeductions", issues[2].Field)
	require.Equal(t, "period", issues[3].Field)
}

func TestValidatorReject(t *testing.T) {
	rec := httptest.NewRecorder()
	require.False(t, NewValidator().Reject(rec, "req-1"))

	v := NewValidator()
	v.Required("period", "", "is required")
	require.True(t, v.Reject(rec, "req-1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "validation_error", body.Error.Code)
	require.Equal(t, []ValidationIssue{{Field: "period", Reason: "is required"}}, body.Error.Details.Fields)
	require.Equal(t, "req-1", body.RequestID)
}
