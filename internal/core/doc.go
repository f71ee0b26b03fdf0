// Package core provides the business logic for certificate generation.
// This package has no HTTP dependencies and can be driven by any frontend.
//
// The lifecycle of an event is: create the event, upload a roster CSV,
// start a generation job, then download or email the resulting archive.
// Generation runs asynchronously; callers subscribe to progress updates
// or poll, and fetch the result once the job reaches a terminal phase.
package core
