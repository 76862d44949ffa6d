// Package control is the operator surface of a running session: a
// line-oriented command reader that retunes the filter chain, and a
// monitor that periodically renders the latest spectrum.
//
// Command grammar, one command per line:
//
//	l        open the low-pass stage (maximum cutoff)
//	l<hz>    set the low-pass cutoff
//	l+<hz>   raise the low-pass cutoff
//	l-<hz>   lower the low-pass cutoff
//	h...     the same forms for the high-pass stage (bare h resets to the floor)
//	q        finish the session
package control
