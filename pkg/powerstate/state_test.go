package powerstate

import (
	"errors"
	"testing"
)

func TestModeAllows(t *testing.T) {
	tests := []struct {
		mode    Mode
		trigger Trigger
		want    bool
	}{
		{Autosleep, TriggerAutosleep, true},
		{Autosleep, TriggerPanel, false},
		{Autosleep, TriggerOperator, false},
		{Userspace, TriggerAutosleep, false},
		{Userspace, TriggerPanel, false},
		{Userspace, TriggerOperator, true},
		{Panel, TriggerAutosleep, false},
		{Panel, TriggerPanel, true},
		{Panel, TriggerOperator, false},
		{Hybrid, TriggerAutosleep, true},
		{Hybrid, TriggerPanel, true},
		{Hybrid, TriggerOperator, false},
		{Mode(7), TriggerOperator, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.trigger.String(), func(t *testing.T) {
			if got := tt.mode.Allows(tt.trigger); got != tt.want {
				t.Errorf("%v.Allows(%v) = %v, want %v", tt.mode, tt.trigger, got, tt.want)
			}
		})
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{"0", Inactive, false},
		{"1\n", Active, false},
		{" active ", Active, false},
		{"suspend", Active, false},
		{"resume", Inactive, false},
		{"2", 0, true},
		{"-1", 0, true},
		{"", 0, true},
		{"yes", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseState(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidState) {
				t.Errorf("error %v is not ErrInvalidState", err)
			}
			if got != tt.want {
				t.Errorf("ParseState(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"0", Autosleep, false},
		{"1", Userspace, false},
		{"2", Panel, false},
		{"3\n", Hybrid, false},
		{"hybrid", Hybrid, false},
		{"4", 0, true},
		{"panel-ish", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultMode(t *testing.T) {
	if DefaultMode != Userspace {
		t.Errorf("DefaultMode = %v, want USERSPACE", DefaultMode)
	}
}

func TestParseTrigger(t *testing.T) {
	for in, want := range map[string]Trigger{
		"autosleep": TriggerAutosleep,
		"PANEL":     TriggerPanel,
		"operator":  TriggerOperator,
	} {
		got, err := ParseTrigger(in)
		if err != nil {
			t.Fatalf("ParseTrigger(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseTrigger(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseTrigger("kernel"); err == nil {
		t.Error("ParseTrigger(kernel) should fail")
	}
}
