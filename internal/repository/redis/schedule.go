package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
)

type scheduleRepository struct {
	client *redis.Client
}

func NewScheduleRepository(client *redis.Client) repository.ScheduleRepository {
	return &scheduleRepository{client: client}
}

func (r *scheduleRepository) Get(ctx context.Context) (model.Schedule, error) {
	schedule := model.DefaultSchedule()

	raw, err := r.client.Get(ctx, keySchedule).Bytes()
	if err == redis.Nil {
		return schedule, nil
	}
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to read schedule: %w", err)
	}

	// Unmarshal over the defaults so absent fields keep their documented values.
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return model.Schedule{}, fmt.Errorf("failed to decode schedule: %w", err)
	}
	if schedule.Timezone == "" {
		schedule.Timezone = model.DefaultScheduleTZ
	}
	return schedule, nil
}

func (r *scheduleRepository) Update(ctx context.Context, patch model.SchedulePatch) (model.Schedule, error) {
	schedule, err := r.Get(ctx)
	if err != nil {
		return model.Schedule{}, err
	}

	if patch.Enabled != nil {
		schedule.Enabled = *patch.Enabled
	}
	if patch.TimeOfDay != nil {
		schedule.TimeOfDay = *patch.TimeOfDay
	}
	if patch.Title != nil {
		schedule.Title = *patch.Title
	}
	if patch.Body != nil {
		schedule.Body = *patch.Body
	}
	if patch.Timezone != nil {
		schedule.Timezone = *patch.Timezone
	}
	if patch.LastSentOn != nil {
		schedule.LastSentOn = *patch.LastSentOn
	}

	raw, err := json.Marshal(schedule)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to encode schedule: %w", err)
	}
	if err := r.client.Set(ctx, keySchedule, raw, 0).Err(); err != nil {
		return model.Schedule{}, fmt.Errorf("failed to write schedule: %w", err)
	}
	return schedule, nil
}

// markSentScript sets lastSentOn to the given date only when it differs,
// returning 1 when this caller performed the write. Runs server-side so two
// overlapping ticks cannot both win the day.
var markSentScript = redis.NewScript(`
local doc = {}
local raw = redis.call('GET', KEYS[1])
if raw then doc = cjson.decode(raw) end
if doc['lastSentOn'] == ARGV[1] then return 0 end
doc['lastSentOn'] = ARGV[1]
redis.call('SET', KEYS[1], cjson.encode(doc))
return 1
`)

func (r *scheduleRepository) MarkSent(ctx context.Context, date string) (bool, error) {
	n, err := markSentScript.Run(ctx, r.client, []string{keySchedule}, date).Int()
	if err != nil {
		return false, fmt.Errorf("failed to mark schedule sent: %w", err)
	}
	return n == 1, nil
}

// clearSentScript rolls lastSentOn back to its previous value, but only if
// it still holds the claimed date; a concurrent config update wins otherwise.
var clearSentScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then return 0 end
local doc = cjson.decode(raw)
if doc['lastSentOn'] ~= ARGV[1] then return 0 end
if ARGV[2] == '' then doc['lastSentOn'] = nil else doc['lastSentOn'] = ARGV[2] end
redis.call('SET', KEYS[1], cjson.encode(doc))
return 1
`)

func (r *scheduleRepository) ClearSent(ctx context.Context, date, previous string) error {
	if err := clearSentScript.Run(ctx, r.client, []string{keySchedule}, date, previous).Err(); err != nil {
		return fmt.Errorf("failed to clear schedule sent marker: %w", err)
	}
	return nil
}
