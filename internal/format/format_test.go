package format

import (
	"testing"
	"time"
)

func TestFmtDZD(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 DA"},
		{900, "900 DA"},
		{2500, "2 500 DA"},
		{12500, "12 500 DA"},
		{1234567, "1 234 567 DA"},
		{-2500, "-2 500 DA"},
	}
	for _, c := range cases {
		if got := FmtDZD(c.in); got != c.want {
			t.Fatalf("FmtDZD(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFmtDate(t *testing.T) {
	ts := time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC)
	if got := FmtDate(ts, "fr"); got != "09/03/2025" {
		t.Fatalf("fr date = %q", got)
	}
	if got := FmtDate(ts, "en"); got != "Mar 9, 2025" {
		t.Fatalf("en date = %q", got)
	}
	if got := FmtDate(ts, "ar"); got != "2025/03/09" {
		t.Fatalf("ar date = %q", got)
	}
}
