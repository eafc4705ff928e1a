package redis

import "github.com/redis/go-redis/v9"

// upsertBestScript performs the lookup/compare/write of UpsertBestResult in one step.
//
// KEYS[1] result index hash, KEYS[2] latest zset, KEYS[3] fastest zset
// ARGV[1] candidate id, ARGV[2] lap ms, ARGV[3] latest score, ARGV[4] payload, ARGV[5] result key prefix
//
// Returns {outcome, stored id, stored payload}.
var upsertBestScript = redis.NewScript(`
local existing = redis.call('HGET', KEYS[1], 'id')
if not existing then
  redis.call('HSET', KEYS[1], 'id', ARGV[1], 'lap', ARGV[2])
  redis.call('SET', ARGV[5] .. ARGV[1], ARGV[4])
  redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
  redis.call('ZADD', KEYS[3], ARGV[2], ARGV[1])
  return {'created', ARGV[1], ARGV[4]}
end
local lap = tonumber(redis.call('HGET', KEYS[1], 'lap'))
if tonumber(ARGV[2]) < lap then
  redis.call('HSET', KEYS[1], 'lap', ARGV[2])
  redis.call('SET', ARGV[5] .. existing, ARGV[4])
  redis.call('ZADD', KEYS[2], ARGV[3], existing)
  redis.call('ZADD', KEYS[3], ARGV[2], existing)
  return {'updated', existing, ARGV[4]}
end
local payload = redis.call('GET', ARGV[5] .. existing)
if not payload then
  return {'ignored', existing, ''}
end
return {'ignored', existing, payload}
`)

// deleteResultScript removes a result and its index entries.
//
// KEYS[1] result key, KEYS[2] result index hash, KEYS[3] latest zset, KEYS[4] fastest zset
// ARGV[1] result id
//
// Returns 0 when the result did not exist.
var deleteResultScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('DEL', KEYS[1])
if redis.call('HGET', KEYS[2], 'id') == ARGV[1] then
  redis.call('DEL', KEYS[2])
end
redis.call('ZREM', KEYS[3], ARGV[1])
redis.call('ZREM', KEYS[4], ARGV[1])
return 1
`)
