package server

// routeEvent is the playback event state machine: given one inbound event
// it decides what to broadcast. It performs no I/O, so it is testable
// without a transport.
//
// The returned message is broadcast to the sender's room; excludeSender
// limits delivery to everyone but the sender's own connections;
// refreshQueue means the persisted queue must be re-read and broadcast
// instead of mirroring the event. A nil message with refreshQueue false
// is a no-op (unrecognized event).
//
// Admin identity is deliberately not verified for PROGRESS_UPDATE and
// ADMIN_ACTION; clients only emit them from the controlling player.
func routeEvent(msg *ClientMessage) (out any, excludeSender bool, refreshQueue bool) {
	switch msg.Type {
	case TypePlayerState:
		return playerStateMsg{Type: TypePlayerState, IsPlaying: msg.IsPlaying}, false, false
	case TypeSeekTo:
		return seekToMsg{Type: TypeSeekTo, CurrentTime: msg.CurrentTime}, false, false
	case TypeSongChanged:
		return songChangedMsg{Type: TypeSongChanged, Song: msg.Song}, false, false
	case TypeSongEnded:
		// Queue advance happens through the HTTP remove-song mutation,
		// not here.
		return songEndedMsg{Type: TypeSongEnded}, false, false
	case TypeQueueUpdate:
		return nil, false, true
	case TypeProgressUpdate:
		return progressUpdateMsg{
			Type:        TypeProgressUpdate,
			Progress:    msg.Progress,
			Duration:    msg.Duration,
			CurrentTime: msg.CurrentTime,
		}, true, false
	case TypeAdminAction:
		return adminActionMsg{Type: TypeAdminAction, Action: msg.Action, SongId: msg.SongId}, false, false
	default:
		return nil, false, false
	}
}
