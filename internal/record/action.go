package record

import (
	"encoding/json"
	"fmt"
)

// ActionKind discriminates the closed set of synthesized actions.
type ActionKind string

const (
	ActionSuggestion ActionKind = "suggestion"
	ActionReminder   ActionKind = "reminder"
	ActionAddToGoals ActionKind = "add_to_goals"
)

// Action is the closed union of synthesized follow-up actions.
type Action interface {
	Kind() ActionKind
	isAction()
}

// SuggestionAction proposes something the user might want to do.
type SuggestionAction struct {
	Suggestion string `json:"suggestion"`
}

func (*SuggestionAction) Kind() ActionKind { return ActionSuggestion }
func (*SuggestionAction) isAction()        {}

func (a *SuggestionAction) MarshalJSON() ([]byte, error) {
	type alias SuggestionAction
	return json.Marshal(&struct {
		Type ActionKind `json:"type"`
		*alias
	}{ActionSuggestion, (*alias)(a)})
}

// ReminderAction schedules a reminder for a specific time.
type ReminderAction struct {
	Content string `json:"content"`
	// Time is the RFC3339 instant at which the reminder should fire.
	Time string `json:"time"`
}

func (*ReminderAction) Kind() ActionKind { return ActionReminder }
func (*ReminderAction) isAction()        {}

func (a *ReminderAction) MarshalJSON() ([]byte, error) {
	type alias ReminderAction
	return json.Marshal(&struct {
		Type ActionKind `json:"type"`
		*alias
	}{ActionReminder, (*alias)(a)})
}

// GoalAction adds a new goal for the user to strive for.
type GoalAction struct {
	Goal string `json:"goal"`
}

func (*GoalAction) Kind() ActionKind { return ActionAddToGoals }
func (*GoalAction) isAction()        {}

func (a *GoalAction) MarshalJSON() ([]byte, error) {
	type alias GoalAction
	return json.Marshal(&struct {
		Type ActionKind `json:"type"`
		*alias
	}{ActionAddToGoals, (*alias)(a)})
}

// SynthesisResult is the structured output of the action synthesis
// stage. Zero actions is a valid result.
type SynthesisResult struct {
	Actions []Action `json:"actions"`
	// RelatedMemories holds the IDs of the memories that informed the
	// synthesized actions.
	RelatedMemories []string `json:"relatedMemories"`
}

// UnmarshalJSON decodes a synthesis result, dispatching each action on
// its discriminator. An unrecognized action kind fails the decode.
func (r *SynthesisResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Actions         []json.RawMessage `json:"actions"`
		RelatedMemories []string          `json:"relatedMemories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	actions := make([]Action, 0, len(raw.Actions))
	for i, msg := range raw.Actions {
		action, err := unmarshalAction(msg)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, action)
	}

	r.Actions = actions
	r.RelatedMemories = raw.RelatedMemories
	if r.RelatedMemories == nil {
		r.RelatedMemories = []string{}
	}
	return nil
}

func unmarshalAction(data []byte) (Action, error) {
	var env struct {
		Type ActionKind `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	var action Action
	switch env.Type {
	case ActionSuggestion:
		action = &SuggestionAction{}
	case ActionReminder:
		action = &ReminderAction{}
	case ActionAddToGoals:
		action = &GoalAction{}
	default:
		return nil, fmt.Errorf("unknown action type: %q", env.Type)
	}

	if err := json.Unmarshal(data, action); err != nil {
		return nil, err
	}
	return action, nil
}
