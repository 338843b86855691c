package redis

import "github.com/redis/go-redis/v9"

/* Lua scripts keep every state transition atomic on the server
 * The visible sorted set doubles as the lease index: score is the unix millisecond
 * at which the message becomes visible again, so lease expiry needs no scheduler
 * Message keys are derived inside the scripts, which assumes a single Redis node
 */

// KEYS: visible, dlq index
// ARGV: now, visibility ms, max receive count, limit, msg key prefix, dlq msg key prefix, source queue
var receiveScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local lease = tonumber(ARGV[2])
local maxReceive = tonumber(ARGV[3])
local limit = tonumber(ARGV[4])
local out = {}
local seen = {}
while #out < limit do
  local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', now, 'LIMIT', 0, limit - #out)
  local fresh = 0
  for _, id in ipairs(ids) do
    local key = ARGV[5] .. id
    if seen[id] then
      -- already handled by this call
    elseif redis.call('EXISTS', key) == 0 then
      redis.call('ZREM', KEYS[1], id)
    else
      seen[id] = true
      fresh = fresh + 1
      local count = redis.call('HINCRBY', key, 'receive_count', 1)
      if count > maxReceive then
        local fields = redis.call('HMGET', key, 'body', 'received_at')
        local dlqKey = ARGV[6] .. id
        redis.call('DEL', dlqKey)
        redis.call('HSET', dlqKey, 'id', id, 'body', fields[1], 'received_at', fields[2],
          'receive_count', count, 'source_queue', ARGV[7], 'dead_lettered_at', now)
        redis.call('ZADD', KEYS[2], now, id)
        redis.call('DEL', key)
        redis.call('ZREM', KEYS[1], id)
      else
        redis.call('ZADD', KEYS[1], now + lease, id)
        local fields = redis.call('HMGET', key, 'body', 'received_at')
        out[#out + 1] = {id, fields[1], fields[2], count}
      end
    end
  end
  if fresh == 0 then
    break
  end
end
return out
`)

// KEYS: visible
// ARGV: id, now, timeout ms
var changeVisibilityScript = redis.NewScript(`
local score = redis.call('ZSCORE', KEYS[1], ARGV[1])
if score and tonumber(score) > tonumber(ARGV[2]) then
  redis.call('ZADD', KEYS[1], tonumber(ARGV[2]) + tonumber(ARGV[3]), ARGV[1])
  return 1
end
return 0
`)

// KEYS: dlq index, dlq msg
// ARGV: now, id, queue key prefix, fallback queue
// The target keys come from the stored source_queue, a DLQ may be shared by several queues
var redeliverScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 0 then
  return false
end
local fields = redis.call('HMGET', KEYS[2], 'body', 'received_at', 'source_queue')
local source = fields[3]
if not source or source == '' then
  source = ARGV[4]
end
local msgKey = ARGV[3] .. ':' .. source .. ':msg:' .. ARGV[2]
redis.call('DEL', msgKey)
redis.call('HSET', msgKey, 'id', ARGV[2], 'body', fields[1], 'received_at', fields[2], 'receive_count', 0)
redis.call('ZADD', ARGV[3] .. ':' .. source .. ':visible', ARGV[1], ARGV[2])
redis.call('DEL', KEYS[2])
redis.call('ZREM', KEYS[1], ARGV[2])
return source
`)
