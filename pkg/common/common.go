package common

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	jsoniter "github.com/json-iterator/go"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a snowflake-based int64 identifier.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake-based string identifier.
func UUID() string {
	return snowflakeNode.Generate().String()
}

// NextOrderNumber returns a unique, monotonically distinguishable order
// number. Snowflake IDs embed a timestamp and a sequence, so concurrent
// generation never collides.
func NextOrderNumber() string {
	return fmt.Sprintf("AGR%s", snowflakeNode.Generate().Base36())
}

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeCode normalizes a coupon code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ToJSON marshals v, returning "{}" on failure.
func ToJSON(v interface{}) string {
	b, err := jsoniter.MarshalToString(v)
	if err != nil {
		return "{}"
	}
	return b
}

// FromJSON unmarshals s into v, ignoring empty input.
func FromJSON(s string, v interface{}) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return jsoniter.UnmarshalFromString(s, v)
}

// InStrings reports whether target is present in list, case-insensitive.
func InStrings(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}

// DaysSince returns whole days elapsed since t.
func DaysSince(t time.Time, now time.Time) float64 {
	return now.Sub(t).Hours() / 24
}
