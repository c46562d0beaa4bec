package hole

import "testing"

func TestStatusRoundTrip(t *testing.T) {
	for _, st := range []Status{StatusPending, StatusInProgress, StatusQualified, StatusDefective} {
		got, err := ParseStatus(st.String())
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", st.String(), err)
		}
		if got != st {
			t.Errorf("ParseStatus(%q) = %v, want %v", st.String(), got, st)
		}
	}
	if _, err := ParseStatus("bogus"); err == nil {
		t.Error("expected error for unknown status string")
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := map[Status]bool{
		StatusPending:    false,
		StatusInProgress: false,
		StatusQualified:  true,
		StatusDefective:  true,
	}
	for st, want := range cases {
		if st.Terminal() != want {
			t.Errorf("%v.Terminal() = %v, want %v", st, st.Terminal(), want)
		}
	}
}

func TestSideFromID(t *testing.T) {
	cases := map[string]Side{
		"L01-03": SideLeft,
		"r07-11": SideRight,
		"X99":    SideUnknown,
		"":       SideUnknown,
	}
	for id, want := range cases {
		if got := SideFromID(id); got != want {
			t.Errorf("SideFromID(%q) = %v, want %v", id, got, want)
		}
	}
}
