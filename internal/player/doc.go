// Package player holds playback state for the currently loaded track and drives it with a single owned ticker.
//
// # State
//
// A [Player] owns a [State]: the loaded track (optional), a playing flag and progress as a percentage in [0,100].
// State only changes through Play, Pause, Toggle, Seek, LoadTrack and ticks. Subscribers read snapshots from
// [Player.Updates], a channel that always holds the latest state only.
//
// # Policies
//
//   - [RestartOnPlayPolicy]: whether resuming continues from the current position or restarts from zero.
//   - [TickPolicy]: interval and per-tick increment. [FixedTick] advances 0.5 points every 100ms,
//     [DurationTick] advances 100/duration points every second.
//
// Progress that would pass 100 wraps to 0 so the track loops.
//
// # Timer Ownership
//
// At most one ticker is alive per player. It is created when playback starts and stopped when playback stops
// or [Player.Close] is called. Ticks delivered by a stopped ticker are discarded by generation.
//
// # Remote Control
//
// [Handle] is the command surface other components use ("play these ids", toggle, seek, skip). [Bridge] is an
// injectable Handle that may be called before a player exists; it replays the last PlayPlaylist on Attach.
package player
