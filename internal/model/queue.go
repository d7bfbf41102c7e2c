package model

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

var ErrAlreadyQueued = errors.New("player already in queue")

type QueuedPlayer struct {
	Player   Player
	JoinedAt time.Time
}

// Queue is the matchmaking queue, oldest first.
type Queue struct {
	players []QueuedPlayer
	now     func() time.Time
	mu      sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

func (q *Queue) indexOf(playerID string) int {
	return slices.IndexFunc(q.players, func(p QueuedPlayer) bool { return p.Player.ID == playerID })
}

func (q *Queue) AddPlayer(player Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexOf(player.ID) >= 0 {
		return ErrAlreadyQueued
	}
	q.players = append(q.players, QueuedPlayer{Player: player, JoinedAt: q.now()})
	return nil
}

func (q *Queue) RemovePlayer(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(playerID)
	if i < 0 {
		return false
	}
	q.players = slices.Delete(q.players, i, i+1)
	return true
}

func (q *Queue) Contains(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexOf(playerID) >= 0
}

// GetNextPair pops the two players who have been waiting longest.
func (q *Queue) GetNextPair() (QueuedPlayer, QueuedPlayer, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.players) < 2 {
		return QueuedPlayer{}, QueuedPlayer{}, false
	}
	first, second := q.players[0], q.players[1]
	q.players = slices.Delete(q.players, 0, 2)
	return first, second, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
