package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("CATALOG_TEST_INT", "abc")
	if got := Int("CATALOG_TEST_INT", 12); got != 12 {
		t.Fatalf("want=12 got=%d", got)
	}
	t.Setenv("CATALOG_TEST_INT", " 40 ")
	if got := Int("CATALOG_TEST_INT", 12); got != 40 {
		t.Fatalf("want=40 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("CATALOG_TEST_BOOL", "off")
	if Bool("CATALOG_TEST_BOOL", true) {
		t.Fatalf("want=false")
	}
	t.Setenv("CATALOG_TEST_BOOL", "maybe")
	if !Bool("CATALOG_TEST_BOOL", true) {
		t.Fatalf("unparseable should keep default")
	}
}

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("CATALOG_TEST_DUR", "90")
	if got := Duration("CATALOG_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("want=90s got=%s", got)
	}
	t.Setenv("CATALOG_TEST_DUR", "2m")
	if got := Duration("CATALOG_TEST_DUR", time.Second); got != 2*time.Minute {
		t.Fatalf("want=2m got=%s", got)
	}
}
