// Package captcha issues single-use arithmetic challenges with a short
// TTL, used by the HTTP API to gate anonymous form submissions.
package captcha

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Challenge is one outstanding arithmetic question. The answer never
// leaves the module.
type Challenge struct {
	ID        string
	Question  string
	ExpiresAt time.Time

	answer int
}

type store struct {
	mu         sync.Mutex
	challenges map[string]*Challenge
	ttl        time.Duration
	newID      func() string
}

func newStore(ttl time.Duration, newID func() string) *store {
	return &store{
		challenges: make(map[string]*Challenge),
		ttl:        ttl,
		newID:      newID,
	}
}

// generate creates and records a new challenge.
func (s *store) generate() *Challenge {
	question, answer := makeQuestion()
	c := &Challenge{
		ID:        s.newID(),
		Question:  question,
		ExpiresAt: time.Now().Add(s.ttl),
		answer:    answer,
	}

	s.mu.Lock()
	s.challenges[c.ID] = c
	s.mu.Unlock()
	return c
}

// verify consumes the challenge. A second call with the same id fails
// regardless of the answer.
func (s *store) verify(id string, answer int) bool {
	s.mu.Lock()
	c, ok := s.challenges[id]
	if ok {
		delete(s.challenges, id)
	}
	s.mu.Unlock()

	if !ok || time.Now().After(c.ExpiresAt) {
		return false
	}
	return c.answer == answer
}

// sweep drops expired challenges and returns how many were removed.
func (s *store) sweep() int {
	now := time.Now()
	removed := 0

	s.mu.Lock()
	for id, c := range s.challenges {
		if now.After(c.ExpiresAt) {
			delete(s.challenges, id)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}

// makeQuestion picks an operator and operands. Subtraction operands are
// ordered so the answer is never negative.
func makeQuestion() (string, int) {
	switch rand.Intn(3) {
	case 0:
		a, b := rand.Intn(20)+1, rand.Intn(20)+1
		return fmt.Sprintf("%d + %d = ?", a, b), a + b
	case 1:
		a, b := rand.Intn(20)+1, rand.Intn(20)+1
		if b > a {
			a, b = b, a
		}
		return fmt.Sprintf("%d - %d = ?", a, b), a - b
	default:
		a, b := rand.Intn(9)+1, rand.Intn(9)+1
		return fmt.Sprintf("%d * %d = ?", a, b), a * b
	}
}
