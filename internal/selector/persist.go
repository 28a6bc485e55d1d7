package selector

import (
	"context"
	"errors"

	"github.com/vitrine-app/vitrine/internal/devicecache"
	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/shardqueue"
)

type saveFunc func(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error)

// persistSelection fans a selection out to the same-device slot, the
// cross-device mirror slot and the durable record. Each channel fails alone.
func (s *Selector) persistSelection(ctx context.Context, userID, collectionID string) {
	s.cacheSet(ctx, devicecache.LastPickedKey(userID), collectionID, channelSameDevice)
	s.cacheSet(ctx, devicecache.SyncedPickKey(userID), collectionID, channelMirror)
	s.enqueue(ctx, userID, "last_selected", collectionID, s.prefs.SaveLastSelected)
}

// enqueue schedules a durable write. Writes for one user run in order on the
// same shard, and a write that was overtaken before it ran is skipped.
func (s *Selector) enqueue(ctx context.Context, userID, field, collectionID string, save saveFunc) {
	key := field + ":" + userID

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.latest[key] = seq
	s.pending[userID] = struct{}{}
	s.mu.Unlock()

	job := shardqueue.JobFunc(func(jctx context.Context) error {
		if !s.isLatest(key, seq) {
			s.log.Debug().Str("userID", userID).Str("field", field).Msg("Skipping superseded preference write")
			return nil
		}
		if _, err := save(jctx, userID, collectionID); err != nil {
			if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrForbidden) {
				return shardqueue.Permanent(err)
			}
			return err
		}
		return nil
	})

	// The write outlives the caller's context.
	if err := s.queue.Submit(context.WithoutCancel(ctx), userID, job); err != nil {
		s.log.Warn().Err(err).Str("userID", userID).Str("field", field).Msg("Could not queue preference write")
		persistFailuresTotal.WithLabelValues(channelDurable).Inc()
	}
}

func (s *Selector) isLatest(key string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[key] == seq
}

func (s *Selector) cacheGet(ctx context.Context, key string) string {
	v, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Device cache read failed")
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (s *Selector) cacheSet(ctx context.Context, key, value, channel string) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Device cache write failed")
		persistFailuresTotal.WithLabelValues(channel).Inc()
	}
}
