package flowexpr

import (
	"github.com/google/uuid"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func miscBuiltins() []builtin {
	return []builtin{
		fn(NewEvaluator("newGuid", ReturnString, Apply(func([]value.Value) value.Value {
			return value.String(uuid.NewString())
		}, nil), ValidateNoChildren)),
		fn(NewEvaluator("jsonStringify", ReturnString, ApplyWithError(func(args []value.Value) (value.Value, error) {
			data, err := value.ToJSON(args[0])
			if err != nil {
				return nil, err
			}
			return value.String(data), nil
		}, nil), ValidateUnary)),
	}
}
