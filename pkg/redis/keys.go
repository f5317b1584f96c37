package redis

import "fmt"

// RateLimitKey buckets inbound bot messages per Telegram user. bot
// distinguishes the customer and admin update streams.
func RateLimitKey(bot string, userID int64) string {
	return fmt.Sprintf("shop_bots:rate_limit:%s:%d", bot, userID)
}
