package form

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	ferrors "github.com/dshills/numentry/pkg/errors"
)

// ErrSource is wrapped when a field's source path cannot supply a number
var ErrSource = errors.New("source value unavailable")

// ApplySource returns a copy of def whose fields with a source path take
// their initial value from the JSON document. Number results are used as
// is; string results must match the number grammar and are checked when the
// field is created. A path that resolves to nothing, or to another JSON
// type, fails.
func ApplySource(def *Definition, jsonDoc []byte) (*Definition, error) {
	if !gjson.ValidBytes(jsonDoc) {
		return nil, ferrors.NewOperationalError("applying source", def.Name, "", errors.New("document is not valid JSON"))
	}

	out := def.Clone()
	for i, f := range out.Fields {
		if f.Source == "" {
			continue
		}

		res := gjson.GetBytes(jsonDoc, f.Source)
		v, err := sourceValue(res)
		if err != nil {
			return nil, ferrors.NewOperationalErrorWithAttrs("applying source", def.Name, f.ID, err,
				map[string]any{"path": f.Source})
		}
		out.Fields[i].Value = v
	}
	return out, nil
}

func sourceValue(res gjson.Result) (any, error) {
	switch res.Type {
	case gjson.Number:
		return res.Float(), nil
	case gjson.String:
		return res.Str, nil
	case gjson.Null:
		if res.Exists() {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: path not found", ErrSource)
	default:
		return nil, fmt.Errorf("%w: got %s", ErrSource, res.Type)
	}
}
