package docsync

import (
	"testing"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/shape"
)

func drawLine(e *Engine, x0, y0, x1, y1 float64) {
	e.Line.Start(x0, y0)
	e.Line.Draw(x1, y1)
	e.Line.Finish()
}

func TestOutboundApplyReplicates(t *testing.T) {
	a := New(nil)
	drawLine(a, 0, 0, 100, 0)
	a.Box.Start(10, 10)
	a.Box.Draw(50, 60)
	a.Box.Finish()
	a.Transform.X = 12

	payload, err := a.Outbound()
	if err != nil {
		t.Fatal(err)
	}

	b := New(nil)
	if _, err := b.Apply(payload); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 2 || b.Transform.X != 12 {
		t.Errorf("replica len=%d transform=%+v", b.Len(), b.Transform)
	}
	if a.Line.Elements()[0].ID != b.Line.Elements()[0].ID {
		t.Error("element ids not preserved")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	payload, err := document.EncodePayload(document.NewSampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}

	e := New(nil)
	if _, err := e.Apply(payload); err != nil {
		t.Fatal(err)
	}
	first, _ := e.Outbound()
	if _, err := e.Apply(payload); err != nil {
		t.Fatal(err)
	}
	second, _ := e.Outbound()

	if first != second {
		t.Errorf("second apply changed state:\n%s\n%s", first, second)
	}
}

func TestApplyLastWriterWins(t *testing.T) {
	a, b := New(nil), New(nil)
	drawLine(a, 0, 0, 10, 10)
	drawLine(b, 5, 5, 50, 50)
	drawLine(b, 6, 6, 60, 60)

	pa, _ := a.Outbound()
	pb, _ := b.Outbound()

	r := New(nil)
	r.Apply(pb)
	r.Apply(pa)
	if r.Len() != 1 || r.Line.Elements()[0].ID != a.Line.Elements()[0].ID {
		t.Errorf("receiver holds %d elements, want only the last writer's", r.Len())
	}
}

func TestClearResetsReceiver(t *testing.T) {
	a := New(nil)
	drawLine(a, 0, 0, 100, 0)

	payload := a.Clear()
	if payload != "" {
		t.Errorf("Clear payload = %q, want empty sentinel", payload)
	}
	if a.Len() != 0 {
		t.Error("sender not cleared")
	}

	r := New(nil)
	seed, _ := document.EncodePayload(document.NewSampleSnapshot())
	r.Apply(seed)
	r.Transform.Scale = 3

	cleared, err := r.Apply(payload)
	if err != nil || !cleared {
		t.Fatalf("cleared=%v err=%v", cleared, err)
	}
	for _, kind := range shape.Kinds {
		if n := len(r.Tool(kind).Elements()); n != 0 {
			t.Errorf("%s bucket has %d elements", kind, n)
		}
	}
	if r.Transform != document.IdentityTransform() {
		t.Errorf("transform = %+v", r.Transform)
	}
}

func TestApplyAbsentKeys(t *testing.T) {
	e := New(nil)
	drawLine(e, 0, 0, 10, 0)
	e.Transform.Scale = 2

	if _, err := e.Apply(`{"box":[{"id":"b","type":"box","shape":[0,0,5,5]}]}`); err != nil {
		t.Fatal(err)
	}
	if len(e.Line.Elements()) != 0 || len(e.Box.Elements()) != 1 {
		t.Error("absent line bucket should be empty after apply")
	}
	if e.Transform != document.IdentityTransform() {
		t.Errorf("absent hand should reset transform, got %+v", e.Transform)
	}
}

func TestApplyInvalidLeavesState(t *testing.T) {
	e := New(nil)
	drawLine(e, 0, 0, 10, 0)

	if _, err := e.Apply(`{"line":[{"id":"x","type":"line","shape":[1,2]}]}`); err == nil {
		t.Fatal("expected error")
	}
	if e.Len() != 1 {
		t.Error("invalid payload modified state")
	}
}

func TestApplyKeepsInProgress(t *testing.T) {
	e := New(nil)
	e.Box.Start(0, 0)
	e.Box.Draw(10, 10)

	e.Apply(`{"line":[{"id":"l","type":"line","shape":[0,0,1,1]}]}`)
	if !e.Box.Active() {
		t.Fatal("in-progress box dropped by a remote snapshot")
	}
	if _, ok := e.Box.Finish(); !ok {
		t.Fatal("box did not commit")
	}
	if e.Len() != 2 {
		t.Errorf("Len = %d, want remote line plus local box", e.Len())
	}
}
