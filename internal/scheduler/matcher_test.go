package scheduler

import (
	"testing"

	"github.com/agentcore/runtime/internal/events"
)

func makeEvent(t events.Type, payload map[string]any) events.Event {
	return events.New(t, "", payload)
}

func TestMatchEvent_BasicMatch(t *testing.T) {
	trigger := &EventTrigger{Type: "skill.called"}
	e := makeEvent("skill.called", nil)

	if !MatchEvent(e, trigger) {
		t.Fatal("expected match for matching event type")
	}
}

func TestMatchEvent_TypeMismatch(t *testing.T) {
	trigger := &EventTrigger{Type: "skill.called"}
	e := makeEvent("schedule.trigger", nil)

	if MatchEvent(e, trigger) {
		t.Fatal("expected no match for different event type")
	}
}

func TestMatchEvent_NilTrigger(t *testing.T) {
	e := makeEvent("skill.called", nil)
	if MatchEvent(e, nil) {
		t.Fatal("expected no match for nil trigger")
	}
}

func TestMatchEvent_FilterMatch(t *testing.T) {
	trigger := &EventTrigger{
		Type:   "skill.called",
		Filter: map[string]string{"skill_name": "deploy"},
	}
	e := makeEvent("skill.called", map[string]any{
		"skill_name": "deploy",
		"output":     "success",
	})

	if !MatchEvent(e, trigger) {
		t.Fatal("expected match when filter matches payload")
	}
}

func TestMatchEvent_FilterMismatch(t *testing.T) {
	trigger := &EventTrigger{
		Type:   "skill.called",
		Filter: map[string]string{"skill_name": "deploy"},
	}
	e := makeEvent("skill.called", map[string]any{"skill_name": "build"})

	if MatchEvent(e, trigger) {
		t.Fatal("expected no match when filter value differs")
	}
}

func TestMatchEvent_FilterMissingKey(t *testing.T) {
	trigger := &EventTrigger{
		Type:   "skill.called",
		Filter: map[string]string{"skill_name": "deploy"},
	}
	e := makeEvent("skill.called", map[string]any{})

	if MatchEvent(e, trigger) {
		t.Fatal("expected no match when filter key is missing from payload")
	}
}
