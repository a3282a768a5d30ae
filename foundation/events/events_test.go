package events_test

import (
	"testing"

	"github.com/ardanlabs/blockledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan out node events to subscribers.")
	{
		t.Logf("\tTest 0:\tWhen two subscribers are registered.")
		{
			evts := events.New()

			ch1 := evts.Acquire("one")
			ch2 := evts.Acquire("two")
			if evts.Acquire("one") != ch1 {
				t.Fatalf("\t%s\tTest 0:\tShould get the same channel for the same id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same channel for the same id.", success)

			evts.Send("viewer: block: mined")

			for _, ch := range []chan string{ch1, ch2} {
				if msg := <-ch; msg != "viewer: block: mined" {
					t.Fatalf("\t%s\tTest 0:\tShould receive the message, got %q.", failed, msg)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould receive the message on every channel.", success)

			if err := evts.Release("one"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to release a channel: %s", failed, err)
			}
			if _, open := <-ch1; open {
				t.Fatalf("\t%s\tTest 0:\tShould close a released channel.", failed)
			}
			if err := evts.Release("one"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould fail to release an unknown id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to release a channel.", success)

			for j := 0; j < 200; j++ {
				evts.Send("flood")
			}
			t.Logf("\t%s\tTest 0:\tShould not block when a subscriber is full.", success)

			evts.Shutdown()
			if evts.Subscribers() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould remove every subscriber on shutdown.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould remove every subscriber on shutdown.", success)
		}
	}
}
