package sse

import (
	"bytes"
	"strconv"

	"github.com/fortran01/notifyrelay/internal/relay"
)

// Encode renders one message as a Server-Sent Events unit:
//
//	data: <payload>
//	event: <name>      (omitted when unset)
//	id: <sequence>     (omitted when unset)
//	retry: <millis>    (omitted when unset)
//
// terminated by a blank line. Retry is emitted in whole milliseconds.
func Encode(msg relay.Message) []byte {
	var b bytes.Buffer
	b.WriteString("data: ")
	b.WriteString(msg.Data)
	if msg.Event != "" {
		b.WriteString("\nevent: ")
		b.WriteString(msg.Event)
	}
	if msg.ID != "" {
		b.WriteString("\nid: ")
		b.WriteString(msg.ID)
	}
	if msg.Retry > 0 {
		b.WriteString("\nretry: ")
		b.WriteString(strconv.FormatInt(msg.Retry.Milliseconds(), 10))
	}
	b.WriteString("\r\n\r\n")
	return b.Bytes()
}
