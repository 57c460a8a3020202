package projector

import (
	"sort"
	"strconv"

	"github.com/aleister1102/apiextract/internal/models"
)

// ScalarKey holds a top-level value that is not an object
const ScalarKey = "value"

// Flatten turns one extracted value into a flat row.
// Nested objects become dotted keys, arrays are kept whole. A top-level array is
// keyed by element index; any other non-object becomes {value: v}.
// Object keys are emitted in sorted order.
func Flatten(value any) models.Row {
	return FlattenOrdered(value, nil)
}

// FlattenOrdered is Flatten with object keys ordered by keyOrder, the first-appearance
// key order of the source document. Keys absent from keyOrder follow in sorted order.
func FlattenOrdered(value any, keyOrder []string) models.Row {
	f := flattener{row: models.NewRow()}
	if len(keyOrder) > 0 {
		f.rank = make(map[string]int, len(keyOrder))
		for i, k := range keyOrder {
			f.rank[k] = i
		}
	}

	switch v := value.(type) {
	case map[string]any:
		f.object("", v)
	case []any:
		for i, elem := range v {
			f.value(strconv.Itoa(i), elem)
		}
	default:
		f.row.Set(ScalarKey, value)
	}
	return *f.row
}

type flattener struct {
	row  *models.Row
	rank map[string]int
}

func (f *flattener) object(prefix string, obj map[string]any) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, okI := f.rank[keys[i]]
		rj, okJ := f.rank[keys[j]]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		default:
			return keys[i] < keys[j]
		}
	})

	for _, k := range keys {
		f.value(prefix+k, obj[k])
	}
}

func (f *flattener) value(key string, value any) {
	if nested, ok := value.(map[string]any); ok {
		f.object(key+".", nested)
		return
	}
	f.row.Set(key, value)
}
