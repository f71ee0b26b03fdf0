package core

import "testing"

func TestJobPhase_Terminal(t *testing.T) {
	tests := []struct {
		phase JobPhase
		want  bool
	}{
		{PhaseStarting, false},
		{PhaseRendering, false},
		{PhaseArchiving, false},
		{PhaseComplete, true},
		{PhaseFailed, true},
		{PhaseCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			if got := tt.phase.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress_Percent(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		want     int
	}{
		{
			name:     "starting is zero",
			progress: Progress{Phase: PhaseStarting, Total: 10},
			want:     0,
		},
		{
			name:     "halfway through rendering",
			progress: Progress{Phase: PhaseRendering, Total: 10, Rendered: 5},
			want:     50,
		},
		{
			name:     "failures count toward progress",
			progress: Progress{Phase: PhaseRendering, Total: 10, Rendered: 6, Failed: 2},
			want:     80,
		},
		{
			name:     "archiving reads as done",
			progress: Progress{Phase: PhaseArchiving, Total: 10, Rendered: 7},
			want:     100,
		},
		{
			name:     "complete is always full",
			progress: Progress{Phase: PhaseComplete, Total: 10, Rendered: 10},
			want:     100,
		},
		{
			name:     "zero total does not divide",
			progress: Progress{Phase: PhaseRendering},
			want:     0,
		},
		{
			name:     "failed job keeps partial progress",
			progress: Progress{Phase: PhaseFailed, Total: 4, Rendered: 1},
			want:     25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.progress.Percent(); got != tt.want {
				t.Errorf("Percent() = %d, want %d", got, tt.want)
			}
		})
	}
}
