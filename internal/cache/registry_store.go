package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"event-registry/internal/model"
	apperrors "event-registry/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

const (
	eventSeqKey    = "registry:events:seq"
	eventKeyPrefix = "event:"
)

// Lua status codes shared by the scripts below.
const (
	codeOK                = 1
	codeInvalidEvent      = -1
	codeWindowElapsed     = -2
	codeAlreadyRegistered = -3
	codeMissingToken      = -4
)

// createEventScript allocates the next id and writes the record in one step.
// The info key is derived from the id inside the script, so this store expects
// a single Redis node rather than a cluster.
var createEventScript = redis.NewScript(`
	local seq_key = KEYS[1]
	local prefix = ARGV[1]

	local id = redis.call('INCR', seq_key)
	local info_key = prefix .. id .. ':info'

	redis.call('HSET', info_key,
		'id', id,
		'name', ARGV[2],
		'event_date', ARGV[3],
		'speakers', ARGV[4],
		'location_name', ARGV[5],
		'duration', ARGV[6],
		'end_date', ARGV[7],
		'attendees', 0,
		'is_completed', 0)

	return id
`)

// registerScript runs the registration checks in order (event, window,
// duplicate, token) and only then adds the address and bumps the counter.
var registerScript = redis.NewScript(`
	local info_key = KEYS[1]
	local attendees_key = KEYS[2]

	local address = ARGV[1]
	local now = tonumber(ARGV[2])
	local holds_token = ARGV[3]

	local end_date = redis.call('HGET', info_key, 'end_date')
	if not end_date then
		return -1
	end

	if now >= tonumber(end_date) then
		return -2
	end

	if redis.call('SISMEMBER', attendees_key, address) == 1 then
		return -3
	end

	if holds_token ~= '1' then
		return -4
	end

	redis.call('SADD', attendees_key, address)
	redis.call('HINCRBY', info_key, 'attendees', 1)

	return 1
`)

// RegistryStore keeps events as hashes and registration sets as Redis sets.
type RegistryStore struct {
	client *redis.Client
}

func NewRegistryStore(client *redis.Client) *RegistryStore {
	return &RegistryStore{
		client: client,
	}
}

// event record key
func (s *RegistryStore) getInfoKey(eventID uint64) string {
	return fmt.Sprintf("%s%d:info", eventKeyPrefix, eventID)
}

// registration set key
func (s *RegistryStore) getAttendeesKey(eventID uint64) string {
	return fmt.Sprintf("%s%d:attendees", eventKeyPrefix, eventID)
}

func (s *RegistryStore) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	speakers := event.Speakers
	if speakers == nil {
		speakers = []string{}
	}
	speakersJSON, err := json.Marshal(speakers)
	if err != nil {
		return nil, fmt.Errorf("marshal speakers: %w", err)
	}

	id, err := createEventScript.Run(ctx, s.client, []string{eventSeqKey},
		eventKeyPrefix,
		event.EventName,
		event.EventDate,
		string(speakersJSON),
		event.EventLocationName,
		event.Duration,
		event.EndDate,
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	created := event.Clone()
	created.ID = uint64(id)
	created.Speakers = speakers
	created.Attendees = 0
	created.IsCompleted = false
	return created, nil
}

func (s *RegistryStore) FindByID(ctx context.Context, id uint64) (*model.Event, error) {
	result, err := s.client.HGetAll(ctx, s.getInfoKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, apperrors.ErrEventNotFound
	}
	return parseEvent(result)
}

func (s *RegistryStore) Count(ctx context.Context) (uint64, error) {
	count, err := s.client.Get(ctx, eventSeqKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

func (s *RegistryStore) Register(ctx context.Context, eventID uint64, addr model.Address, now int64, holdsToken bool) error {
	if eventID == 0 {
		return apperrors.ErrInvalidEventID
	}

	token := "0"
	if holdsToken {
		token = "1"
	}

	code, err := registerScript.Run(ctx, s.client,
		[]string{s.getInfoKey(eventID), s.getAttendeesKey(eventID)},
		addr.String(), now, token,
	).Int64()
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	switch code {
	case codeOK:
		return nil
	case codeInvalidEvent:
		return apperrors.ErrInvalidEventID
	case codeWindowElapsed:
		return apperrors.ErrRegistrationClosed
	case codeAlreadyRegistered:
		return apperrors.ErrAlreadyRegistered
	case codeMissingToken:
		return apperrors.ErrMissingRequiredToken
	default:
		return fmt.Errorf("register: unexpected script result %d", code)
	}
}

func (s *RegistryStore) IsRegistered(ctx context.Context, eventID uint64, addr model.Address) (bool, error) {
	exists, err := s.client.Exists(ctx, s.getInfoKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	if exists == 0 {
		return false, apperrors.ErrInvalidEventID
	}
	return s.client.SIsMember(ctx, s.getAttendeesKey(eventID), addr.String()).Result()
}

func parseEvent(fields map[string]string) (*model.Event, error) {
	var (
		event model.Event
		err   error
	)

	if event.ID, err = strconv.ParseUint(fields["id"], 10, 64); err != nil {
		return nil, fmt.Errorf("invalid id: %v", err)
	}
	if event.EventDate, err = strconv.ParseInt(fields["event_date"], 10, 64); err != nil {
		return nil, fmt.Errorf("invalid event_date: %v", err)
	}
	if event.Duration, err = strconv.ParseInt(fields["duration"], 10, 64); err != nil {
		return nil, fmt.Errorf("invalid duration: %v", err)
	}
	if event.EndDate, err = strconv.ParseInt(fields["end_date"], 10, 64); err != nil {
		return nil, fmt.Errorf("invalid end_date: %v", err)
	}
	if event.Attendees, err = strconv.ParseUint(fields["attendees"], 10, 64); err != nil {
		return nil, fmt.Errorf("invalid attendees: %v", err)
	}
	if err = json.Unmarshal([]byte(fields["speakers"]), &event.Speakers); err != nil {
		return nil, fmt.Errorf("invalid speakers: %v", err)
	}

	event.EventName = fields["name"]
	event.EventLocationName = fields["location_name"]
	event.IsCompleted = fields["is_completed"] == "1"
	return &event, nil
}
