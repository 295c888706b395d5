// Package cache keeps rendered public forms in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/redis/go-redis/v9"
)

const (
	formKeyTemplate = "form:%d"
	genKeyTemplate  = "form:%d:gen"
)

// Generation identifies the cache state of one form at lookup time. A fill
// carrying an older generation than the current one is dropped.
type Generation int64

// NoGeneration never matches, so a fill carrying it is always dropped.
const NoGeneration Generation = -1

type FormCache interface {
	// Get returns the cached form, or on a miss the generation to hand to Set.
	Get(ctx context.Context, formId int64) (*model.Form, Generation, bool)
	// Set stores form unless the form was invalidated since gen was read.
	Set(ctx context.Context, form *model.Form, gen Generation) error
	Invalidate(ctx context.Context, formId int64) error
	Ping(ctx context.Context) error
	Close() error
}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts), ttl: ttl}, nil
}

func formKey(formId int64) string {
	return fmt.Sprintf(formKeyTemplate, formId)
}

func genKey(formId int64) string {
	return fmt.Sprintf(genKeyTemplate, formId)
}

func parseGeneration(v any) (Generation, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return NoGeneration, fmt.Errorf("unexpected generation %v", v)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NoGeneration, fmt.Errorf("parse generation: %w", err)
	}
	return Generation(n), nil
}

// Get treats every failure as a miss; the database stays the source of truth.
// A failed lookup yields NoGeneration so that the following fill is skipped.
func (c *Redis) Get(ctx context.Context, formId int64) (*model.Form, Generation, bool) {
	vals, err := c.client.MGet(ctx, formKey(formId), genKey(formId)).Result()
	if err != nil {
		log.Warnf("cache.get %d: %s", formId, err)
		return nil, NoGeneration, false
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		log.Warnf("cache.get.generation %d: %s", formId, err)
		return nil, NoGeneration, false
	}

	data, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}

	form := &model.Form{}
	if err = json.Unmarshal([]byte(data), form); err != nil {
		log.Warnf("cache.get.decode %d: %s", formId, err)
		return nil, gen, false
	}
	return form, gen, true
}

func (c *Redis) Set(ctx context.Context, form *model.Form, gen Generation) error {
	if gen == NoGeneration {
		return nil
	}

	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}

	gk := genKey(form.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		v, err := tx.Get(ctx, gk).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		var current Generation
		if err == nil {
			current, err = parseGeneration(v)
			if err != nil {
				return err
			}
		}
		if current != gen {
			log.Debugf("cache.set %d: stale generation %d, now %d", form.ID, gen, current)
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, formKey(form.ID), data, c.ttl)
			return nil
		})
		return err
	}, gk)

	if errors.Is(err, redis.TxFailedErr) {
		log.Debugf("cache.set %d: invalidated during fill", form.ID)
		return nil
	}
	return err
}

// Invalidate drops the cached form and bumps its generation, so fills that
// looked the form up before this call are discarded.
func (c *Redis) Invalidate(ctx context.Context, formId int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(formId))
		pipe.Del(ctx, formKey(formId))
		return nil
	})
	return err
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}

// Noop is used when no Redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, int64) (*model.Form, Generation, bool) {
	return nil, NoGeneration, false
}
func (Noop) Set(context.Context, *model.Form, Generation) error { return nil }
func (Noop) Invalidate(context.Context, int64) error            { return nil }
func (Noop) Ping(context.Context) error                         { return nil }
func (Noop) Close() error                                       { return nil }
