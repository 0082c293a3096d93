package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/go-playground/validator/v10"
)

const hexPrefix = "0x"

var validate = validator.New()

// rule checks one raw value. An empty Reason means the value is valid.
type rule func(raw any) (Value, Reason, string)

func ruleFor(kind catalog.Kind) (rule, error) {
	switch kind {
	case catalog.KindInteger:
		return checkInteger, nil
	case catalog.KindBoolean:
		return checkBoolean, nil
	case catalog.KindString:
		return checkString, nil
	case catalog.KindHexString:
		return checkHexString, nil
	default:
		return nil, fmt.Errorf("no validation rule for kind %q", kind)
	}
}

func checkInteger(raw any) (Value, Reason, string) {
	const msg = "must be a whole number"

	switch v := raw.(type) {
	case nil:
		return Value{}, ReasonRequired, "is required"
	case int:
		return intValue(int64(v)), "", ""
	case int8:
		return intValue(int64(v)), "", ""
	case int16:
		return intValue(int64(v)), "", ""
	case int32:
		return intValue(int64(v)), "", ""
	case int64:
		return intValue(v), "", ""
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return intValue(int64(v)), "", ""
	case uint16:
		return intValue(int64(v)), "", ""
	case uint32:
		return intValue(int64(v)), "", ""
	case uint64:
		return fromUint(v)
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return intValue(i), "", ""
		}
		if f, err := v.Float64(); err == nil {
			return fromFloat(f)
		}
		return Value{}, ReasonWrongType, msg
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return Value{}, ReasonRequired, "is required"
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, ReasonWrongType, msg
		}
		return intValue(i), "", ""
	default:
		return Value{}, ReasonWrongType, msg
	}
}

func fromUint(u uint64) (Value, Reason, string) {
	if u > math.MaxInt64 {
		return Value{}, ReasonWrongType, "is out of range"
	}
	return intValue(int64(u)), "", ""
}

func fromFloat(f float64) (Value, Reason, string) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Value{}, ReasonWrongType, "must be a whole number"
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return Value{}, ReasonWrongType, "is out of range"
	}
	return intValue(int64(f)), "", ""
}

func checkBoolean(raw any) (Value, Reason, string) {
	const msg = "must be true or false"

	switch v := raw.(type) {
	case nil:
		return Value{}, ReasonRequired, "is required"
	case bool:
		return boolValue(v), "", ""
	case string:
		switch strings.TrimSpace(v) {
		case "":
			return Value{}, ReasonRequired, "is required"
		case "true":
			return boolValue(true), "", ""
		case "false":
			return boolValue(false), "", ""
		}
		return Value{}, ReasonWrongType, msg
	default:
		return Value{}, ReasonWrongType, msg
	}
}

func checkString(raw any) (Value, Reason, string) {
	switch v := raw.(type) {
	case nil:
		return Value{}, ReasonRequired, "is required"
	case string:
		return stringValue(v), "", ""
	default:
		return Value{}, ReasonWrongType, "must be text"
	}
}

func checkHexString(raw any) (Value, Reason, string) {
	switch v := raw.(type) {
	case nil:
		return Value{}, ReasonRequired, "is required"
	case string:
		if v == "" {
			return Value{}, ReasonRequired, "is required"
		}
		if err := validate.Var(v, "startswith="+hexPrefix); err != nil {
			return Value{}, ReasonMissingPrefix, fmt.Sprintf("must start with %q", hexPrefix)
		}
		return hexValue(v), "", ""
	default:
		return Value{}, ReasonWrongType, fmt.Sprintf("must be a %s-prefixed hex string", hexPrefix)
	}
}
