package observe

import "testing"

func TestNotifyOrderAndUnsubscribe(t *testing.T) {
	var l List[int]
	var got []string

	l.Subscribe(func(v int) { got = append(got, "a") })
	stop := l.Subscribe(func(v int) { got = append(got, "b") })
	l.Subscribe(func(v int) { got = append(got, "c") })

	l.Notify(1)
	stop()
	stop()
	l.Notify(2)

	want := "abcac"
	var s string
	for _, g := range got {
		s += g
	}
	if s != want {
		t.Errorf("got %q, want %q", s, want)
	}
	if l.Len() != 2 {
		t.Errorf("len = %d", l.Len())
	}
}

func TestNotifyPassesValue(t *testing.T) {
	var l List[string]
	var seen string
	l.Subscribe(func(v string) { seen = v })
	l.Notify("zoom")
	if seen != "zoom" {
		t.Errorf("seen = %q", seen)
	}
}
