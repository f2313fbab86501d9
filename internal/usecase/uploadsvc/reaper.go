package uploadsvc

import (
	"log"
	"sync"
	"time"
)

// StartReaper запускает периодическую чистку брошенных сессий и возвращает
// функцию остановки. Работает независимо от запросного потока.
func StartReaper(s *Uploads, ttl, every time.Duration) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweepOnce(ttl, time.Now())
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// ReapNow выполняет один проход чистки с настроенным TTL (ручной запуск).
func (s *Uploads) ReapNow() error {
	ttl := time.Duration(s.ReapTTL) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s.sweepOnce(ttl, time.Now())
	return nil
}

// sweepOnce удаляет из реестра сессии в Receiving старше ttl вместе с их чанками.
func (s *Uploads) sweepOnce(ttl time.Duration, now time.Time) {
	for _, sess := range s.Registry.Reap(ttl, now) {
		if err := s.Chunks.Remove(sess.OwnerID, sess.UploadID); err != nil {
			log.Printf("uploadsvc: reaper failed to remove chunks for %s/%s: %v", sess.OwnerID, sess.UploadID, err)
			continue
		}
		log.Printf("uploadsvc: reaped abandoned session %s/%s (%d of %d chunks)",
			sess.OwnerID, sess.UploadID, sess.ChunksReceived(), sess.TotalChunks)
	}
}
