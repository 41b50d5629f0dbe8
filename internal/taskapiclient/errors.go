package taskapiclient

import "errors"

// ErrPermanent marks a 4xx response: the caller should log and skip,
// never retry (spec §7 "permanent downstream").
var ErrPermanent = errors.New("taskapiclient: permanent failure")

// ErrTransient marks a network error or 5xx response: safe to retry on
// the next scheduler tick (spec §7 "transient downstream").
var ErrTransient = errors.New("taskapiclient: transient failure")
