// Package vgm implements a streaming parser, scheduler and builder for
// Video Game Music (VGM) register-write logs: binary timelines of retro
// sound chip writes interleaved with waits, data blocks and DAC-stream
// control operations.
//
// The package consumes a VGM command/data region — either a pre-parsed
// Document or raw bytes fed incrementally via Stream.PushChunk — and
// yields a normalised sequence of chip writes and waits through
// Stream.Next. It does not perform audio synthesis, does not pace itself
// against a wall clock, and does not decompress the gzip wrapper some VGM
// files are stored in; callers hand it the decompressed command/data
// region directly.
package vgm
