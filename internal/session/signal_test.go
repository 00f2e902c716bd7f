package session

import (
	"sync"
	"testing"
)

func TestSignalStartsRunning(t *testing.T) {
	var s Signal
	if got := s.State(); got != Running {
		t.Errorf("zero Signal state = %s, want running", got)
	}
}

func TestSignalFirstRequestWins(t *testing.T) {
	t.Run("stop then cancel", func(t *testing.T) {
		var s Signal
		if !s.RequestStop() {
			t.Fatal("first RequestStop should win")
		}
		if s.RequestCancel() {
			t.Error("RequestCancel after stop should lose")
		}
		if got := s.State(); got != StopRequested {
			t.Errorf("state = %s, want stop-requested", got)
		}
	})

	t.Run("cancel then stop", func(t *testing.T) {
		var s Signal
		if !s.RequestCancel() {
			t.Fatal("first RequestCancel should win")
		}
		if s.RequestStop() {
			t.Error("RequestStop after cancel should lose")
		}
		if got := s.State(); got != CancelRequested {
			t.Errorf("state = %s, want cancel-requested", got)
		}
	})

	t.Run("repeat requests are ignored", func(t *testing.T) {
		var s Signal
		s.RequestStop()
		if s.RequestStop() {
			t.Error("second RequestStop should report false")
		}
	})
}

func TestSignalConcurrentRequestsHaveOneWinner(t *testing.T) {
	var s Signal
	var wg sync.WaitGroup
	wins := make(chan string, 20)

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if s.RequestStop() {
				wins <- "stop"
			}
		}()
		go func() {
			defer wg.Done()
			if s.RequestCancel() {
				wins <- "cancel"
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %v", winners)
	}

	state := s.State()
	if winners[0] == "stop" && state != StopRequested {
		t.Errorf("winner stop but state = %s", state)
	}
	if winners[0] == "cancel" && state != CancelRequested {
		t.Errorf("winner cancel but state = %s", state)
	}
}

func TestSignalStateString(t *testing.T) {
	tests := []struct {
		state SignalState
		want  string
	}{
		{Running, "running"},
		{StopRequested, "stop-requested"},
		{CancelRequested, "cancel-requested"},
		{SignalState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
