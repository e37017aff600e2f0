package envutil

import (
	"slices"
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("MEDLIB_TEST_STRING", "  dir ")
	t.Setenv("MEDLIB_TEST_INT", "nope")
	t.Setenv("MEDLIB_TEST_BOOL", "Yes")
	t.Setenv("MEDLIB_TEST_DURATION", "45")
	t.Setenv("MEDLIB_TEST_LIST", "published, review,,")

	if got := String("MEDLIB_TEST_STRING", "embedded"); got != "dir" {
		t.Fatalf("String: got=%q", got)
	}
	if got := String("MEDLIB_TEST_UNSET", "embedded"); got != "embedded" {
		t.Fatalf("String default: got=%q", got)
	}
	if got := Int("MEDLIB_TEST_INT", 8); got != 8 {
		t.Fatalf("Int should fall back on parse errors: got=%d", got)
	}
	if !Bool("MEDLIB_TEST_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	if got := Duration("MEDLIB_TEST_DURATION", time.Second); got != 45*time.Second {
		t.Fatalf("Duration: got=%s", got)
	}
	if got := List("MEDLIB_TEST_LIST", nil); !slices.Equal(got, []string{"published", "review"}) {
		t.Fatalf("List: got=%v", got)
	}
}
