package player

import "github.com/desertthunder/wavelet/internal/models"

// Queue is an ordered list of tracks with a cursor. Next and Previous wrap around.
type Queue struct {
	tracks []models.Track
	cursor int
}

func NewQueue(tracks []models.Track) *Queue {
	cp := make([]models.Track, len(tracks))
	copy(cp, tracks)
	return &Queue{tracks: cp}
}

func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.tracks)
}

// Index returns the cursor position, or -1 for an empty queue.
func (q *Queue) Index() int {
	if q.Len() == 0 {
		return -1
	}
	return q.cursor
}

func (q *Queue) Current() (models.Track, bool) {
	if q.Len() == 0 {
		return models.Track{}, false
	}
	return q.tracks[q.cursor], true
}

func (q *Queue) Next() (models.Track, bool) { return q.move(1) }

func (q *Queue) Previous() (models.Track, bool) { return q.move(-1) }

func (q *Queue) move(delta int) (models.Track, bool) {
	i, t, ok := q.peek(delta)
	if ok {
		q.cursor = i
	}
	return t, ok
}

// peek returns the track delta steps from the cursor without moving it.
func (q *Queue) peek(delta int) (int, models.Track, bool) {
	n := q.Len()
	if n == 0 {
		return 0, models.Track{}, false
	}
	i := ((q.cursor+delta)%n + n) % n
	return i, q.tracks[i], true
}

// Tracks returns a copy of the queued tracks.
func (q *Queue) Tracks() []models.Track {
	if q == nil {
		return nil
	}
	cp := make([]models.Track, len(q.tracks))
	copy(cp, q.tracks)
	return cp
}
