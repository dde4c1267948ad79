package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"beach_day.mp4":       "beach_day.mp4",
		"a/b\\c:d":            "a-b-c-d",
		"what?which\"one<>|":  "whatwhichone",
		"  padded  ":          "padded",
		"*stars*":             "-stars-",
		"":                    "",
		"???":                 "",
		"clip (take 2) final": "clip (take 2) final",
	}
	for input, want := range cases {
		if got := SanitizeFileName(input); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}
