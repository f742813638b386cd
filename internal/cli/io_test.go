package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/calvinalkan/orbit/internal/asteroid"
)

func TestIOWarningsFramePartialOutput(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut)
	o.Warn("duplicate task id a", "rename it")
	o.Warn("duplicate task id a", "rename it")
	o.Println("listing")

	if got, want := errOut.String(), "warning: duplicate task id a: rename it\n"; got != want {
		t.Fatalf("stderr before output=%q, want=%q", got, want)
	}

	if code := o.Finish(); code != 1 {
		t.Errorf("Finish()=%d, want 1", code)
	}

	if got := strings.Count(errOut.String(), "warning:"); got != 2 {
		t.Errorf("warning printed %d times, want start and end only", got)
	}

	if got := out.String(); got != "listing\n" {
		t.Errorf("stdout=%q", got)
	}
}

func TestIOFinishWithoutWarnings(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut)
	o.Println("ok")

	if code := o.Finish(); code != 0 || errOut.Len() != 0 {
		t.Fatalf("Finish()=%d stderr=%q, want 0 and empty", code, errOut.String())
	}
}

func TestIONotifyMarksKind(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	o := NewIO(&out, &bytes.Buffer{})
	o.Notify(asteroid.Notification{Kind: asteroid.KindAlert, Message: "9s left: stretch"})
	o.Notify(asteroid.Notification{Kind: asteroid.KindAccepted, Message: "Accepted: stretch"})
	o.Notify(asteroid.Notification{Kind: asteroid.KindRejected, Message: "Rejected: stretch"})

	want := "! 9s left: stretch\n+ Accepted: stretch\n- Rejected: stretch\n"
	if got := out.String(); got != want {
		t.Errorf("got=%q, want=%q", got, want)
	}
}
