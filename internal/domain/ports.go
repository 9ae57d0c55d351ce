package domain

import "context"

// AuditSink receives audit events emitted by the core (§6). Implementations
// can be in-memory, file-appending, or forward to an external audit log —
// the core neither opens nor closes the persisted log itself (§6).
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent) error
}

// EegPlaybackSource supplies stored EEG samples to the stream coordinator
// (C10) during playback. NotifySeek resets the source's emission cursor.
type EegPlaybackSource interface {
	HasData() bool
	NotifySeek(pos Timestamp)
	// Next returns the next stored sample at or after the cursor, advancing
	// it, or ok=false if no more samples are available up to maxTS.
	Next(maxTS Timestamp) (sample EegSample, ok bool)
}

// VideoIndexPlaybackSource supplies the monotonically-indexed video frame
// lookup to the stream coordinator (C10).
type VideoIndexPlaybackSource interface {
	HasData() bool
	NotifySeek(pos Timestamp)
	// Lookup returns the greatest indexed entry with HostTimestampUS <= ts.
	Lookup(ts Timestamp) (entry VideoIndexEntry, ok bool)
}

// AlarmSink plays an audible cue for urgent audit conditions (device loss,
// CRC/serial errors, excessive playback drift). Kept separate from
// AuditSink because alarms are a presentation concern layered on top of
// the audit trail, not the trail itself.
type AlarmSink interface {
	SoundAlarm(ctx context.Context, kind AuditKind) error
}
