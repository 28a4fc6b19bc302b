package webex

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sparkbot/internal/core/domain"
	"sparkbot/internal/core/port"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

const (
	SignatureHeader = "X-Spark-Signature"
	DefaultPath     = "/sparkbot"

	maxBodyBytes = 1 << 20
	seenCapacity = 1024
)

// Receiver accepts webhook callbacks and hands each event to the worker on its
// own goroutine.
type Receiver struct {
	worker port.EventWorker
	secret []byte
	selfID string
	seen   *recentSet

	// wg tracks running workers so tests and shutdown can wait for them.
	wg sync.WaitGroup
}

func NewReceiver(worker port.EventWorker, secret []byte, selfID string) *Receiver {
	return &Receiver{
		worker: worker,
		secret: secret,
		selfID: selfID,
		seen:   newRecentSet(seenCapacity),
	}
}

func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet, http.MethodHead:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		http.Error(w, "Missing command", http.StatusBadRequest)
		return
	}

	if len(r.secret) > 0 && !r.validSignature(req.Header.Get(SignatureHeader), body) {
		log.Warn().Str("remote", req.RemoteAddr).Msg("rejecting webhook with bad signature")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var event domain.Event
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Malformed event", http.StatusBadRequest)
		return
	}

	if event.ActorID != "" && event.ActorID == r.selfID {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if event.Data.ID != "" && r.seen.add(event.ID+"/"+event.Data.ID) {
		log.Debug().Str("eventId", event.ID).Str("messageId", event.Data.ID).Msg("ignoring redelivered event")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		err := r.worker.Work(context.Background(), &event)
		if err != nil {
			log.Err(err).Str("eventId", event.ID).Msg("failed to handle event")
		}
	}()

	w.WriteHeader(http.StatusNoContent)
}

// Wait blocks until every worker started so far has returned.
func (r *Receiver) Wait() {
	r.wg.Wait()
}

func (r *Receiver) validSignature(signature string, body []byte) bool {
	if signature == "" {
		return false
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(got, Sign(r.secret, body))
}

// Sign computes the HMAC-SHA1 the platform attaches to webhook deliveries.
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha1.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

// recentSet remembers the last n keys by hash.
type recentSet struct {
	mu    sync.Mutex
	index map[uint64]struct{}
	ring  []uint64
	next  int
}

func newRecentSet(n int) *recentSet {
	return &recentSet{
		index: make(map[uint64]struct{}, n),
		ring:  make([]uint64, 0, n),
	}
}

// add records key and reports whether it was already present.
func (s *recentSet) add(key string) bool {
	h := xxhash.Sum64String(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[h]; ok {
		return true
	}

	if len(s.ring) < cap(s.ring) {
		s.ring = append(s.ring, h)
	} else {
		delete(s.index, s.ring[s.next])
		s.ring[s.next] = h
		s.next = (s.next + 1) % len(s.ring)
	}
	s.index[h] = struct{}{}

	return false
}
