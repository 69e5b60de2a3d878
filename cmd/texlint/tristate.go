package main

import (
	"fmt"
	"strings"
)

// tristate is the value of an auto|on|off flag (--color, --ui).
type tristate uint8

const (
	modeAuto tristate = iota
	modeOn
	modeOff
)

func parseTristate(flag, value string) (tristate, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return modeAuto, nil
	case "on", "always":
		return modeOn, nil
	case "off", "never":
		return modeOff, nil
	}
	return modeAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// resolve answers on/off directly and defers auto to detect.
func (t tristate) resolve(detect func() bool) bool {
	switch t {
	case modeOn:
		return true
	case modeOff:
		return false
	default:
		return detect()
	}
}
