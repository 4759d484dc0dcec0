package transmission

import "errors"

// ErrEverythingClosed is reported when a SendTransmitter's fan-out list has
// drained to empty (after Close, or after every pending send was cut short
// by its context) or a RecvTransmitter
// finds every upstream sender has closed with no more data buffered
// (spec.md §4.3 "reports everything-closed"/"EverythingClosed").
var ErrEverythingClosed = errors.New("everything closed")
