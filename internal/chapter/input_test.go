package chapter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobs_Valid(t *testing.T) {
	jobs, err := ParseJobs([]byte(`[
		{"time": "00:00:00", "title": "Intro"},
		{"time": "05:30", "title": "Topic"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []Job{{Time: "00:00:00", Title: "Intro"}, {Time: "05:30", Title: "Topic"}}, jobs)
}

func TestParseJobs_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind ErrorKind
		msg  string
	}{
		{"blank", "   ", KindInvalidInput, "empty"},
		{"not json", "{oops", KindInvalidInput, "invalid JSON"},
		{"object", `{"time":"00:00","title":"x"}`, KindInvalidInput, "must be a JSON array"},
		{"array of scalars", `[1, 2]`, KindInvalidInput, "must be an object"},
		{"empty array", `[]`, KindNoJobs, "must not be empty"},
		{"missing title", `[{"time":"00:00"}]`, KindInvalidInput, "row 1"},
		{"bad time", `[{"time":"00:00","title":"a"},{"time":"00:61","title":"b"}]`, KindInvalidTime, "row 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobs([]byte(tt.in))
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSampleJobs_AreValid(t *testing.T) {
	data, err := json.Marshal(SampleJobs())
	require.NoError(t, err)

	jobs, err := ParseJobs(data)
	require.NoError(t, err)
	assert.Len(t, jobs, 5)
	assert.NoError(t, ValidateJobs(jobs))
}

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, Settings{}.Validate())
	err := Settings{VideoSeekDelayMs: 1, SaveDelayMs: -1}.Validate()
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestPreset(t *testing.T) {
	s, err := Preset("Fast")
	require.NoError(t, err)
	assert.Equal(t, Settings{VideoSeekDelayMs: 1500, ButtonClickDelayMs: 1000, SaveDelayMs: 1500}, s)

	_, err = Preset("warp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fast, normal, slow")
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	inner := Errorf(KindPlayerNotFound, "player not found")
	outer := Wrap(KindInvalidInput, inner, "outer")
	assert.Equal(t, KindInvalidInput, KindOf(outer))
	assert.Equal(t, "outer: player not found", outer.Error())
	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
}
