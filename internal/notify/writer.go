// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"fmt"
	"io"

	"github.com/pdiddy/scripture-links/pkg/types"
)

// WriterSink prints shown notifications to w, one per line, prefixed by
// their kind. Retirements are silent.
func WriterSink(w io.Writer) Sink {
	return func(e Event) {
		if e.Type != EventShown {
			return
		}
		switch e.Notification.Kind {
		case types.NotifyError:
			fmt.Fprintf(w, "error: %s\n", e.Notification.Message)
		case types.NotifySuccess:
			fmt.Fprintf(w, "ok: %s\n", e.Notification.Message)
		default:
			fmt.Fprintf(w, "%s\n", e.Notification.Message)
		}
	}
}
