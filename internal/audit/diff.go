package audit

import (
	"encoding/json"
	"reflect"

	"github.com/orghub/backend/internal/models"
)

// Diff compares two shallow objects field by field. It returns nil when
// either side is nil (no diff attempted) or when nothing differs.
// Keys present on only one side surface as changes with the other side
// absent, so additions and removals are not silently dropped.
func Diff(oldData, newData map[string]any) map[string]models.FieldChange {
	if oldData == nil || newData == nil {
		return nil
	}

	keys := make(map[string]struct{}, len(oldData)+len(newData))
	for k := range oldData {
		keys[k] = struct{}{}
	}
	for k := range newData {
		keys[k] = struct{}{}
	}

	changes := make(map[string]models.FieldChange)
	for k := range keys {
		oldVal, newVal := oldData[k], newData[k]
		if deepEqualJSON(oldVal, newVal) {
			continue
		}
		changes[k] = models.FieldChange{Old: oldVal, New: newVal}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

// deepEqualJSON compares by serialized value so that e.g. int(1) and
// float64(1) coming off different decode paths compare equal.
func deepEqualJSON(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
