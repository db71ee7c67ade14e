package graph

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeFormat is the wire format of DateTime: UTC with milliseconds.
const DateTimeFormat = "2006-01-02T15:04:05.000Z"

// DateTime is the DateTime scalar.
type DateTime struct {
	time.Time
}

// ImplementsGraphQLType binds DateTime to the schema's scalar of that name.
func (DateTime) ImplementsGraphQLType(name string) bool {
	return name == "DateTime"
}

// UnmarshalGraphQL accepts RFC 3339 strings and Unix milliseconds.
func (t *DateTime) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("invalid DateTime %q: %w", v, err)
		}
		t.Time = parsed.UTC()
		return nil
	case int32:
		t.Time = time.UnixMilli(int64(v)).UTC()
		return nil
	case int64:
		t.Time = time.UnixMilli(v).UTC()
		return nil
	case float64:
		t.Time = time.UnixMilli(int64(v)).UTC()
		return nil
	default:
		return fmt.Errorf("wrong type for DateTime: %T", input)
	}
}

func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(DateTimeFormat))
}
