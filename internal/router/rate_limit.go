package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/logger"
)

// RateLimitKeyFunc derives the counter key suffix from the request.
// Returning an empty string skips limiting for that request.
type RateLimitKeyFunc func(c *gin.Context) string

// RateLimitRule describes a fixed-window limit on one endpoint.
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	Message       string
}

// INCR and EXPIRE must happen atomically so the window cannot leak
// a counter without a TTL.
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware enforces a fixed-window limit backed by Redis.
// Without a client or a valid rule it passes requests through.
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 || keyFunc == nil {
			c.Next()
			return
		}

		keySuffix := strings.TrimSpace(keyFunc(c))
		if keySuffix == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", rule.Prefix, keySuffix)
		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
		if err != nil {
			logger.Errorw("rate_limit_script_failed", "key", key, "error", err)
			response.Error(c, response.CodeInternal, "Rate limiter unavailable")
			c.Abort()
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) != 2 {
			logger.Errorw("rate_limit_script_result_invalid", "key", key, "result", result)
			response.Error(c, response.CodeInternal, "Rate limiter unavailable")
			c.Abort()
			return
		}

		count, countOK := toInt64(values[0])
		ttl, ttlOK := toInt64(values[1])
		if !countOK || !ttlOK {
			logger.Errorw("rate_limit_script_result_invalid", "key", key, "result", result)
			response.Error(c, response.CodeInternal, "Rate limiter unavailable")
			c.Abort()
			return
		}
		if count > int64(rule.MaxRequests) {
			waitSeconds := ttl
			if rule.BlockSeconds > int(ttl) && count == int64(rule.MaxRequests)+1 {
				if expireErr := client.Expire(c.Request.Context(), key, time.Duration(rule.BlockSeconds)*time.Second).Err(); expireErr == nil {
					waitSeconds = int64(rule.BlockSeconds)
				}
			}
			if waitSeconds <= 0 {
				waitSeconds = int64(rule.WindowSeconds)
			}
			message := rule.Message
			if message == "" {
				message = "Too many requests"
			}
			response.ErrorWithData(c, response.CodeTooManyRequests, message, gin.H{
				"retry_after_seconds": waitSeconds,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// KeyByIP keys the limit on the client address.
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField keys the limit on a JSON body field plus the
// client address so one address cannot burn attempts across accounts.
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := readJSONField(c, field)
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", strings.ToLower(strings.TrimSpace(value)), c.ClientIP())
	}
}

// readJSONField peeks a string field out of the JSON body and restores
// the body so binding still works downstream.
func readJSONField(c *gin.Context, field string) string {
	if c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return text
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
