package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	durationToken = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*([a-z]*)`)
	clockDuration = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)(?::([0-5]\d))?$`)
)

var durationUnitHours = map[string]float64{
	"h": 1, "hr": 1, "hrs": 1, "hour": 1, "hours": 1, "hora": 1, "horas": 1,
	"m": 1.0 / 60, "min": 1.0 / 60, "mins": 1.0 / 60, "minute": 1.0 / 60, "minutes": 1.0 / 60,
	"minuto": 1.0 / 60, "minutos": 1.0 / 60,
	"s": 1.0 / 3600, "sec": 1.0 / 3600, "secs": 1.0 / 3600, "seg": 1.0 / 3600,
	"second": 1.0 / 3600, "seconds": 1.0 / 3600, "segundo": 1.0 / 3600, "segundos": 1.0 / 3600,
}

// ParseDurationHours converts free-text durations such as "45 min", "2 horas",
// "2h 30min" or "1:15" into hours. Text it cannot read yields 0.
func ParseDurationHours(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	if m := clockDuration.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		sec := 0
		if m[3] != "" {
			sec, _ = strconv.Atoi(m[3])
		}
		return float64(h) + float64(min)/60 + float64(sec)/3600
	}

	total := 0.0
	matched := false
	prevUnit := ""
	for _, m := range durationToken.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil {
			continue
		}
		unit := m[2]
		if unit == "" && durationUnitHours[prevUnit] == 1 {
			// "1h30": a bare number right after an hour token is minutes.
			unit = "min"
		}
		factor, ok := durationUnitHours[unit]
		if !ok {
			prevUnit = ""
			continue
		}
		total += n * factor
		matched = true
		prevUnit = unit
	}
	if !matched {
		return 0
	}
	return total
}
