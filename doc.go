// Package bare implements the BARE (Binary Application Record Encoding)
// wire format: a schema-driven binary encoding intended for use both as a
// streaming wire codec and, via the view sub-packages, as a typed overlay
// on memory-mapped or shared-memory regions.
//
// The schema sub-package defines the BARE type algebra, a validator, and a
// size/alignment/compatibility analyzer. The wire sub-package implements the
// primitive and aggregate codec. The region, layout and view sub-packages
// implement typed random-access over fixed-layout records in a byte buffer.
// The frame sub-package implements a minimal request/response framing used
// by IPC collaborators; the ipc sub-package declares the platform
// collaborator interfaces plus an in-memory provider for tests.
package bare
