package input

import (
	"encoding/json"
	"testing"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
)

func TestClickCycle(t *testing.T) {
	tr := NewTracker()

	events := []Event{
		MoveTo(10, 10),
		ClickAt(Left, 10, 10),
		MoveTo(50, 50),
		ClickAt(Left, 50, 50),
	}
	want := []int{0, 1, 1, 2}

	for i, ev := range events {
		st := tr.Track(ev)
		if st.ClickCount != want[i] {
			t.Errorf("event %d (%s): clickCount = %d, want %d", i, ev.Kind, st.ClickCount, want[i])
		}
	}

	st := tr.State()
	if st.Start != geom.Pt(10, 10) {
		t.Errorf("start = %v, want (10,10)", st.Start)
	}
	if st.End != geom.Pt(50, 50) {
		t.Errorf("end = %v, want (50,50)", st.End)
	}
	if !tr.Complete() {
		t.Error("expected cycle to be complete")
	}

	tr.ResetClickCount()
	if got := tr.State().ClickCount; got != 0 {
		t.Errorf("after reset clickCount = %d, want 0", got)
	}
}

func TestClickSaturates(t *testing.T) {
	tr := NewTracker()
	tr.Track(ClickAt(Left, 1, 1))
	tr.Track(ClickAt(Left, 2, 2))
	st := tr.Track(ClickAt(Left, 3, 3))

	if st.ClickCount != 2 {
		t.Fatalf("clickCount = %d, want 2", st.ClickCount)
	}
	if st.End != geom.Pt(2, 2) {
		t.Errorf("end overwritten by third click: %v", st.End)
	}
}

func TestMoveDelta(t *testing.T) {
	tr := NewTracker()
	tr.Track(MoveTo(5, 5))
	st := tr.Track(MoveTo(8, 1))

	if st.Previous != geom.Pt(5, 5) {
		t.Errorf("previous = %v", st.Previous)
	}
	if st.MoveDelta != geom.Pt(3, -4) {
		t.Errorf("moveDelta = %v, want (3,-4)", st.MoveDelta)
	}
	if !st.Inside {
		t.Error("move should mark pointer inside")
	}
}

func TestButtons(t *testing.T) {
	tr := NewTracker()

	st := tr.Track(Down(Middle, 0, 0))
	if !st.MouseDown || st.Button != Middle {
		t.Fatalf("after down: %+v", st)
	}

	st = tr.Track(Up(Middle, 0, 0))
	if st.MouseDown || st.Button != NoButton {
		t.Fatalf("after up: %+v", st)
	}
}

func TestLeaveWhileDown(t *testing.T) {
	tr := NewTracker()
	tr.Track(MoveTo(20, 30))
	tr.Track(Down(Left, 20, 30))
	tr.Track(MoveTo(40, 35))

	st := tr.Track(LeaveAt(41, 35))
	if st.MouseDown {
		t.Error("leave should release the button")
	}
	if st.End != geom.Pt(40, 35) {
		t.Errorf("end = %v, want last current (40,35)", st.End)
	}
	if st.Inside {
		t.Error("leave should mark pointer outside")
	}
}

func TestLeaveWhileUpKeepsEnd(t *testing.T) {
	tr := NewTracker()
	tr.Track(MoveTo(1, 1))
	st := tr.Track(LeaveAt(1, 1))
	if st.End != (geom.Point{}) {
		t.Errorf("end = %v, want zero", st.End)
	}
}

func TestWheelAndKeyDoNotChangeState(t *testing.T) {
	tr := NewTracker()
	tr.Track(MoveTo(3, 4))
	before := tr.State()

	tr.Track(WheelAt(100, 100, 1))
	tr.Track(Press(KeyEscape))

	if tr.State() != before {
		t.Errorf("state changed: %+v -> %+v", before, tr.State())
	}
}

func TestEventJSON(t *testing.T) {
	var ev Event
	if err := json.Unmarshal([]byte(`{"kind":"click","position":{"x":4,"y":2},"button":"left"}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Kind != Click || ev.Button != Left || ev.Position != geom.Pt(4, 2) {
		t.Errorf("got %+v", ev)
	}

	if err := json.Unmarshal([]byte(`{"kind":"hover"}`), &ev); err == nil {
		t.Error("expected error for unknown kind")
	}
}
