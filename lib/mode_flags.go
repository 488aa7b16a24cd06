package lib

import (
	"fmt"
	"strings"
)

// RunMode is the mode nblist is being run in.
type RunMode int

const (
	HelpMode RunMode = iota
	CheckMode
	BuildMode
	StatsMode
	ConfirmMode
)

var modeNames = []string{"help", "check", "build", "stats", "confirm"}

func (m RunMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("RunMode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode returns the RunMode with the given name.
func ParseMode(name string) (RunMode, error) {
	for i := range modeNames {
		if strings.EqualFold(name, modeNames[i]) {
			return RunMode(i), nil
		}
	}
	return HelpMode, fmt.Errorf("you attempted to run nblist in the mode "+
		"'%s', but the only valid modes are %s", name,
		strings.Join(modeNames, ", "))
}
