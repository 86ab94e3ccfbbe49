package service

import (
	"encoding/json"

	"kraisys/internal/model"

	"github.com/rs/zerolog/log"
)

// The specifications schema evolved from "one option" (perforation_id scalar
// column) to "many options" (perforation_ids JSON array column) without a
// migration, so real rows carry either, both, or neither representation.
// NormalizeOptionIDs is the permanent compatibility shim that reconciles the
// two at the persistence boundary; everything in memory holds only the
// canonical list form.
//
// Rules:
//   - a present, non-empty array wins as-is;
//   - otherwise a present scalar becomes a one-element list;
//   - otherwise the result is empty.
//
// The function is total: any input yields a (possibly empty) list, never an
// error. A JSON parse failure on the array is logged and treated as "array
// absent", which lets the scalar fallback still apply.
func NormalizeOptionIDs(scalar *int64, array interface{}) []int64 {
	ids := decodeIDArray(array)
	if len(ids) > 0 {
		return ids
	}
	if scalar != nil {
		return []int64{*scalar}
	}
	return []int64{}
}

// decodeIDArray coerces the array column's possible runtime shapes - nil, a
// raw JSON string, bytes, or an already-decoded list - into []int64.
func decodeIDArray(array interface{}) []int64 {
	switch v := array.(type) {
	case nil:
		return nil
	case []int64:
		return v
	case model.OptionIDs:
		return []int64(v)
	case []int:
		out := make([]int64, len(v))
		for i, id := range v {
			out[i] = int64(id)
		}
		return out
	case string:
		return parseIDJSON([]byte(v))
	case []byte:
		return parseIDJSON(v)
	case []interface{}:
		// json.Unmarshal into interface{} produces float64 elements
		out := make([]int64, 0, len(v))
		for _, e := range v {
			if f, ok := e.(float64); ok {
				out = append(out, int64(f))
			}
		}
		return out
	default:
		log.Warn().Msgf("option id array has unexpected type %T, ignoring", array)
		return nil
	}
}

func parseIDJSON(raw []byte) []int64 {
	if len(raw) == 0 {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		log.Warn().Err(err).Msg("malformed option id JSON, treating as absent")
		return nil
	}
	return ids
}
