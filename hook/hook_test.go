package hook

import (
	"context"
	"testing"
)

type recordingEndpoint struct {
	calls []string
}

func (e *recordingEndpoint) HandleJoined(_ context.Context, scope string) error {
	e.calls = append(e.calls, "joined:"+scope)
	return nil
}

func (e *recordingEndpoint) HandleChanged(_ context.Context, scope string) error {
	e.calls = append(e.calls, "changed:"+scope)
	return nil
}

func (e *recordingEndpoint) HandleDeparted(_ context.Context, scope string) error {
	e.calls = append(e.calls, "departed:"+scope)
	return nil
}

func TestDispatchRouting(t *testing.T) {
	ep := &recordingEndpoint{}
	d := NewDispatcher(ep)
	ctx := context.Background()

	events := []Event{
		{Kind: Joined, Scope: "peer/0"},
		{Kind: Changed, Scope: "peer/0"},
		{Kind: Departed, Scope: "peer/0"},
		{Kind: Broken, Scope: "peer/0"},
	}
	for _, ev := range events {
		if err := d.Dispatch(ctx, ev); err != nil {
			t.Fatalf("Dispatch(%v): %v", ev, err)
		}
	}

	want := []string{"joined:peer/0", "changed:peer/0", "departed:peer/0", "departed:peer/0"}
	if len(ep.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", ep.calls, want)
	}
	for i := range want {
		if ep.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, ep.calls[i], want[i])
		}
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	d := NewDispatcher(&recordingEndpoint{})
	if err := d.Dispatch(context.Background(), Event{Kind: "upgraded", Scope: "peer/0"}); err == nil {
		t.Error("Dispatch accepted an unknown hook kind")
	}
}
