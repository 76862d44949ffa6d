// Package stream binds a capture source, the filter chain, the spectrum
// analyzer and an output sink into a single real-time session.
//
// A [Session] is driven either by a callback backend, which calls
// [Session.ProcessInto] from its audio goroutine, or by [Session.Run], which
// pulls blocks from a [Source] and pushes the filtered result into a [Sink].
// Every loop in the pipeline stops once the session's finished flag is set.
package stream
