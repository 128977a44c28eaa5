package repository

import (
	"context"
	"fmt"
	"lingua_backend/internal/model"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionStore 保存一次课时进行中的练习状态，key 为 (user, lesson)
type SessionStore interface {
	Get(ctx context.Context, userID, lessonID, exerciseID uint) (model.ExerciseStatus, error)
	Set(ctx context.Context, userID, lessonID, exerciseID uint, status model.ExerciseStatus) error
	All(ctx context.Context, userID, lessonID uint) (map[uint]model.ExerciseStatus, error)
	Clear(ctx context.Context, userID, lessonID uint) error
}

// RedisSessionStore 每个 (user, lesson) 一个 hash，写入时刷新 TTL
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(userID, lessonID uint) string {
	return fmt.Sprintf("lesson_session:%d:%d", userID, lessonID)
}

func (s *RedisSessionStore) Get(ctx context.Context, userID, lessonID, exerciseID uint) (model.ExerciseStatus, error) {
	val, err := s.rdb.HGet(ctx, sessionKey(userID, lessonID), strconv.FormatUint(uint64(exerciseID), 10)).Result()
	if err == redis.Nil {
		return model.StatusUnattempted, nil
	}
	if err != nil {
		return "", err
	}
	return model.ExerciseStatus(val), nil
}

func (s *RedisSessionStore) Set(ctx context.Context, userID, lessonID, exerciseID uint, status model.ExerciseStatus) error {
	key := sessionKey(userID, lessonID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, strconv.FormatUint(uint64(exerciseID), 10), string(status))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func (s *RedisSessionStore) All(ctx context.Context, userID, lessonID uint) (map[uint]model.ExerciseStatus, error) {
	raw, err := s.rdb.HGetAll(ctx, sessionKey(userID, lessonID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[uint]model.ExerciseStatus, len(raw))
	for field, val := range raw {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		out[uint(id)] = model.ExerciseStatus(val)
	}
	return out, nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, userID, lessonID uint) error {
	return s.rdb.Del(ctx, sessionKey(userID, lessonID)).Err()
}

type memorySession struct {
	statuses map[uint]model.ExerciseStatus
	expires  time.Time
}

// MemorySessionStore 单进程使用，测试和无 Redis 的本地开发
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
}

// live 返回未过期的会话，调用方持有锁
func (s *MemorySessionStore) live(key string) *memorySession {
	sess, ok := s.sessions[key]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().After(sess.expires) {
		delete(s.sessions, key)
		return nil
	}
	return sess
}

func (s *MemorySessionStore) Get(_ context.Context, userID, lessonID, exerciseID uint) (model.ExerciseStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.live(sessionKey(userID, lessonID))
	if sess == nil {
		return model.StatusUnattempted, nil
	}
	status, ok := sess.statuses[exerciseID]
	if !ok {
		return model.StatusUnattempted, nil
	}
	return status, nil
}

func (s *MemorySessionStore) Set(_ context.Context, userID, lessonID, exerciseID uint, status model.ExerciseStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(userID, lessonID)
	sess := s.live(key)
	if sess == nil {
		sess = &memorySession{statuses: make(map[uint]model.ExerciseStatus)}
		s.sessions[key] = sess
	}
	sess.statuses[exerciseID] = status
	sess.expires = s.now().Add(s.ttl)
	return nil
}

func (s *MemorySessionStore) All(_ context.Context, userID, lessonID uint) (map[uint]model.ExerciseStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uint]model.ExerciseStatus)
	if sess := s.live(sessionKey(userID, lessonID)); sess != nil {
		for id, st := range sess.statuses {
			out[id] = st
		}
	}
	return out, nil
}

func (s *MemorySessionStore) Clear(_ context.Context, userID, lessonID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID, lessonID))
	return nil
}
