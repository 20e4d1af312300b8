// AngelaMos | 2026
// dto_test.go

package backend

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var u struct {
		ID        ID `json:"id"`
		EditionID ID `json:"edition_id"`
		CompanyID ID `json:"company_id"`
	}

	require.NoError(t, json.Unmarshal(
		[]byte(`{"id":42,"edition_id":"ed-9","company_id":null}`), &u,
	))

	assert.Equal(t, ID("42"), u.ID)
	assert.Equal(t, ID("ed-9"), u.EditionID)
	assert.Equal(t, ID(""), u.CompanyID)
}

func TestEditionDTODecodesSnakeCaseFeatures(t *testing.T) {
	raw := `{
		"id": "e1",
		"name": "Enterprise",
		"is_deleted": true,
		"features": {
			"co_branding": true,
			"custom_fields": false,
			"document_management": true,
			"ems_response_report": true,
			"notes_module": false
		}
	}`

	var e EditionDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Empty(t, e.Status)
	assert.Equal(t, NewFlag(true), e.IsDeleted)
	assert.True(t, e.Features.CoBranding)
	assert.False(t, e.Features.CustomFields)
	assert.True(t, e.Features.DocumentManagement)
	assert.True(t, e.Features.EMSResponseReport)
	assert.False(t, e.Features.NotesModule)
}

func TestFlagIsTolerant(t *testing.T) {
	tests := []struct {
		raw  string
		want Flag
	}{
		{`true`, NewFlag(true)},
		{`false`, NewFlag(false)},
		{`1`, NewFlag(true)},
		{`0`, NewFlag(false)},
		{`"true"`, NewFlag(true)},
		{`"0"`, NewFlag(false)},
		{`"TRUE"`, NewFlag(true)},
		{`null`, Flag{}},
		{`"maybe"`, Flag{}},
		{`{}`, Flag{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f Flag
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestTimestampIsTolerant(t *testing.T) {
	want := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		raw    string
		isZero bool
	}{
		{`"2026-03-04T05:06:07Z"`, false},
		{`"2026-03-04T05:06:07"`, false},
		{`"2026-03-04 05:06:07"`, false},
		{`""`, true},
		{`null`, true},
		{`"04/03/2026"`, true},
		{`1772600767`, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			if tt.isZero {
				assert.True(t, ts.IsZero())
				assert.Nil(t, ts.Ptr())
				return
			}
			assert.True(t, ts.Equal(want))
		})
	}
}

func TestEditionListSurvivesAmbiguousRecords(t *testing.T) {
	raw := `[
		{"id":1,"name":"A","is_deleted":0,"deleted_at":"","created_at":"not a date"},
		{"id":2,"name":"B","is_deleted":1},
		{"id":3,"name":"C","status":null}
	]`

	var editions []EditionDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &editions))
	require.Len(t, editions, 3)

	assert.Equal(t, NewFlag(false), editions[0].IsDeleted)
	assert.True(t, editions[0].DeletedAt.IsZero())
	assert.Nil(t, editions[0].CreatedAt.Ptr())
	assert.Equal(t, NewFlag(true), editions[1].IsDeleted)
	assert.False(t, editions[2].IsDeleted.Valid)
}

func TestEditionDTOEncodesTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	out, err := json.Marshal(EditionDTO{ID: "1", CreatedAt: NewTimestamp(now)})
	require.NoError(t, err)

	assert.Contains(t, string(out), `"created_at":"2026-03-04T05:06:07Z"`)
	assert.Contains(t, string(out), `"updated_at":null`)
	assert.Contains(t, string(out), `"is_deleted":null`)
}

func TestParseError(t *testing.T) {
	code, msg := parseError(json.RawMessage(`"  nope "`))
	assert.Empty(t, code)
	assert.Equal(t, "nope", msg)

	code, msg = parseError(json.RawMessage(`{"code":"X","message":"y"}`))
	assert.Equal(t, "X", code)
	assert.Equal(t, "y", msg)

	code, msg = parseError(nil)
	assert.Empty(t, code)
	assert.Empty(t, msg)
}

func TestDecodeEnvelopeFallsBackToMessage(t *testing.T) {
	err := decodeEnvelope("GET", "/x", 400, []byte(`{"success":false,"message":"bad"}`), nil)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "bad", apiErr.UserMessage())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Slug taken",
		ErrorMessage(fmt.Errorf("wrap: %w", &APIError{Status: 409, Message: "Slug taken"})))
	assert.Equal(t, "The server could not be reached. Please try again.",
		ErrorMessage(fmt.Errorf("GET /x: %w", ErrRequestFailed)))
}
