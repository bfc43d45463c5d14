package patient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidRecord is wrapped by every decode and validation failure.
var ErrInvalidRecord = errors.New("invalid patient record")

// Decode parses a wire record. Every field must be present and non-null,
// unknown keys are rejected and enum fields must carry a known label.
func Decode(data []byte) (*Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidRecord)
	}

	known := make(map[string]bool, len(FieldNames))
	var missing []string
	for _, name := range FieldNames {
		known[name] = true
		v, ok := raw[name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields: %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}

	var unknown []string
	for k := range raw {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown fields: %s", ErrInvalidRecord, strings.Join(unknown, ", "))
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: field %s must be %s, got %s", ErrInvalidRecord, typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := rec.checkEnums(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Record) checkEnums() error {
	var bad []string
	if !validGenders[r.Gender] {
		bad = append(bad, fmt.Sprintf("Gender=%q", r.Gender))
	}
	if !validEthnicities[r.Ethnicity] {
		bad = append(bad, fmt.Sprintf("Ethnicity=%q", r.Ethnicity))
	}
	if !validSmoking[r.Smoking] {
		bad = append(bad, fmt.Sprintf("Smoking=%q", r.Smoking))
	}
	if !validAlcohol[r.AlcoholConsumption] {
		bad = append(bad, fmt.Sprintf("AlcoholConsumption=%q", r.AlcoholConsumption))
	}
	if !validActivities[r.PhysicalActivity] {
		bad = append(bad, fmt.Sprintf("PhysicalActivity=%q", r.PhysicalActivity))
	}
	if !validQualities[r.DietQuality] {
		bad = append(bad, fmt.Sprintf("DietQuality=%q", r.DietQuality))
	}
	if !validQualities[r.SleepQuality] {
		bad = append(bad, fmt.Sprintf("SleepQuality=%q", r.SleepQuality))
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: unknown enum values: %s", ErrInvalidRecord, strings.Join(bad, ", "))
	}
	return nil
}
