package tour

import (
	"log"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Timing is an optional numeric override. An explicit 0 is a valid value;
// only an absent key leaves Set false.
type Timing struct {
	Value float64
	Set   bool
}

// Seconds builds a set override.
func Seconds(v float64) Timing { return Timing{Value: v, Set: true} }

// parseTiming accepts a finite, non-negative number. Anything else is
// reported and treated as absent so the default applies.
func parseTiming(raw string, where string) Timing {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "~" {
		return Timing{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		log.Printf("[!] Некорректное значение тайминга %q (%s), используется значение по умолчанию", raw, where)
		return Timing{}
	}
	return Timing{Value: v, Set: true}
}

func (t *Timing) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		log.Printf("[!] Некорректное значение тайминга (строка %d), используется значение по умолчанию", node.Line)
		*t = Timing{}
		return nil
	}
	*t = parseTiming(node.Value, "строка "+strconv.Itoa(node.Line))
	return nil
}

func (t *Timing) UnmarshalJSON(data []byte) error {
	*t = parseTiming(strings.Trim(string(data), `"`), "json")
	return nil
}

func (t Timing) MarshalYAML() (interface{}, error) {
	if !t.Set {
		return nil, nil
	}
	return t.Value, nil
}

func (t Timing) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(t.Value, 'g', -1, 64)), nil
}

// IsZero lets omitempty drop unset overrides.
func (t Timing) IsZero() bool { return !t.Set }
