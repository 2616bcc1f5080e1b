package arena

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/freeeve/bigbrainbot/internal/bot"
)

// ParseSeatConfig parses a seat policy string like "0=blockade,*=harvest"
// into one role policy per seat. Seats not named get the "*" policy, or
// "harvest" when there is none.
func ParseSeatConfig(s string, seats int) ([]string, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("seat count must be positive, got %d", seats)
	}
	out := make([]string, seats)
	fallback := bot.HarvestOnly{}.Name()
	explicit := make(map[int]string)

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok || val == "" {
			return nil, fmt.Errorf("malformed seat entry %q", part)
		}
		if _, err := bot.RoleAssignerByName(val, 0, 0); err != nil {
			return nil, err
		}
		if key == "*" {
			fallback = val
			continue
		}
		seat, err := strconv.Atoi(key)
		if err != nil || seat < 0 || seat >= seats {
			return nil, fmt.Errorf("seat %q out of range [0,%d)", key, seats)
		}
		explicit[seat] = val
	}

	for i := range out {
		if p, ok := explicit[i]; ok {
			out[i] = p
		} else {
			out[i] = fallback
		}
	}
	return out, nil
}

// Label summarises a seat assignment, e.g. "blockade vs harvest".
func Label(policies []string) string {
	return strings.Join(policies, " vs ")
}
