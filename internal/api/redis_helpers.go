package api

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// countInWindow 原子地自增计数并在首次写入时设置过期，避免 INCR 成功而 EXPIRE 丢失导致计数永不过期。
var countInWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// loginKeys 汇总登录限流与锁定使用的 Redis 键。
type loginKeys struct {
	email string
}

// rate 返回 ip+邮箱 在 now 所在整点窗口内的计数键。
func (k loginKeys) rate(ip string, now time.Time) string {
	window := now.UTC().Truncate(time.Hour).Unix()
	return "rate:login:" + ip + ":" + k.email + ":" + strconv.FormatInt(window, 10)
}

func (k loginKeys) failures() string { return "lock:login:fail:" + k.email }

func (k loginKeys) lock() string { return "lock:login:" + k.email }

func countWithTTL(ctx context.Context, client redis.Scripter, key string, ttl time.Duration) (int64, error) {
	return countInWindow.Run(ctx, client, []string{key}, ttl.Milliseconds()).Int64()
}
