package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		expectError bool
		wantKind    Kind
	}{
		{
			name:     "valid event",
			payload:  `{"type":"event","title":"Standup","description":"Daily sync","startTime":"2026-03-01T09:00:00Z","endTime":"2026-03-01T09:15:00Z","attendees":["a@x.com","b@x.com"]}`,
			wantKind: KindEvent,
		},
		{
			name:     "valid document",
			payload:  `{"type":"document","title":"Q3 Report","content":"Revenue grew.","author":"Jane"}`,
			wantKind: KindDocument,
		},
		{
			name:     "valid email",
			payload:  `{"type":"email","to":"to@x.com","from":"from@x.com","subject":"Hi","body":"Hello there."}`,
			wantKind: KindEmail,
		},
		{
			name:        "unknown type",
			payload:     `{"type":"note","title":"x"}`,
			expectError: true,
		},
		{
			name:        "document missing content",
			payload:     `{"type":"document","title":"Q3 Report","author":"Jane"}`,
			expectError: true,
		},
		{
			name:        "event missing description",
			payload:     `{"type":"event","title":"Standup","startTime":"2026-03-01T09:00:00Z","endTime":"2026-03-01T09:15:00Z"}`,
			expectError: true,
		},
		{
			name:        "event with bad timestamp",
			payload:     `{"type":"event","title":"Standup","description":"x","startTime":"tomorrow","endTime":"2026-03-01T09:15:00Z"}`,
			expectError: true,
		},
		{
			name:        "email with invalid address",
			payload:     `{"type":"email","to":"not-an-email","from":"from@x.com","subject":"Hi","body":"Hello."}`,
			expectError: true,
		},
		{
			name:        "email with invalid cc entry",
			payload:     `{"type":"email","to":"to@x.com","from":"from@x.com","subject":"Hi","body":"Hello.","cc":["ok@x.com","nope"]}`,
			expectError: true,
		},
		{
			name:        "malformed json",
			payload:     `{"type":`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Unmarshal([]byte(tt.payload))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, rec.Kind())
		})
	}
}

func TestUnmarshal_NormalizesArrays(t *testing.T) {
	t.Run("document tags default to empty", func(t *testing.T) {
		rec, err := Unmarshal([]byte(`{"type":"document","title":"T","content":"C","author":"A"}`))
		require.NoError(t, err)
		doc := rec.(*Document)
		require.NotNil(t, doc.Tags)
		assert.Empty(t, doc.Tags)
	})

	t.Run("event attendees default to empty", func(t *testing.T) {
		rec, err := Unmarshal([]byte(`{"type":"event","title":"T","description":"D","startTime":"2026-03-01T09:00:00Z","endTime":"2026-03-01T10:00:00Z"}`))
		require.NoError(t, err)
		evt := rec.(*Event)
		require.NotNil(t, evt.Attendees)
		assert.Empty(t, evt.Attendees)
	})

	t.Run("email cc defaults to empty", func(t *testing.T) {
		rec, err := Unmarshal([]byte(`{"type":"email","to":"to@x.com","from":"from@x.com","subject":"S","body":"B"}`))
		require.NoError(t, err)
		mail := rec.(*Email)
		require.NotNil(t, mail.Cc)
		assert.Empty(t, mail.Cc)
	})
}

func TestSynthesisResult_UnmarshalJSON(t *testing.T) {
	t.Run("all action kinds", func(t *testing.T) {
		payload := `{
			"actions": [
				{"type":"suggestion","suggestion":"Block focus time before the review."},
				{"type":"reminder","content":"Send the agenda","time":"2026-03-01T08:00:00Z"},
				{"type":"add_to_goals","goal":"Ship the Q3 report"}
			],
			"relatedMemories": ["mem-1","mem-2"]
		}`
		var result SynthesisResult
		require.NoError(t, json.Unmarshal([]byte(payload), &result))
		require.Len(t, result.Actions, 3)
		assert.Equal(t, ActionSuggestion, result.Actions[0].Kind())
		assert.Equal(t, ActionReminder, result.Actions[1].Kind())
		assert.Equal(t, ActionAddToGoals, result.Actions[2].Kind())
		assert.Equal(t, []string{"mem-1", "mem-2"}, result.RelatedMemories)

		reminder := result.Actions[1].(*ReminderAction)
		assert.Equal(t, "Send the agenda", reminder.Content)
		assert.Equal(t, "2026-03-01T08:00:00Z", reminder.Time)
	})

	t.Run("unknown action kind is rejected", func(t *testing.T) {
		payload := `{"actions":[{"type":"escalation","suggestion":"x"}],"relatedMemories":[]}`
		var result SynthesisResult
		err := json.Unmarshal([]byte(payload), &result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown action type")
	})

	t.Run("zero actions is valid", func(t *testing.T) {
		var result SynthesisResult
		require.NoError(t, json.Unmarshal([]byte(`{"actions":[],"relatedMemories":[]}`), &result))
		assert.Empty(t, result.Actions)
		assert.NotNil(t, result.RelatedMemories)
	})
}

func TestAction_MarshalJSON(t *testing.T) {
	result := SynthesisResult{
		Actions: []Action{
			&SuggestionAction{Suggestion: "do it"},
			&ReminderAction{Content: "call back", Time: "2026-03-01T08:00:00Z"},
			&GoalAction{Goal: "run more"},
		},
		RelatedMemories: []string{},
	}

	data, err := json.Marshal(&result)
	require.NoError(t, err)

	// Round-trip through the discriminated decoder.
	var decoded SynthesisResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.Actions, decoded.Actions)
}
